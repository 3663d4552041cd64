// Package sheet talks to the spreadsheet backing the dashboard, either a
// published CSV export (read-only) or an Apps Script web app (two-way).
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/ingest"
)

// Mode indicates what the configured URL can do.
type Mode string

const (
	ModeReadOnly  Mode = "read-only"
	ModeReadWrite Mode = "read-write"
)

// DetectMode classifies a source URL: an Apps Script deployment ends in
// /exec and supports writes, anything else is a read-only CSV export.
func DetectMode(rawURL string) Mode {
	if strings.Contains(rawURL, "/exec") {
		return ModeReadWrite
	}
	return ModeReadOnly
}

// Client fetches and mutates the sheet behind a single source URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a client for the given source URL. The zero-value
// http.Client is deliberate: no timeout beyond transport defaults, and a
// failed sync is retried only by explicit user action.
func NewClient(rawURL string) *Client {
	return &Client{url: rawURL, http: &http.Client{}}
}

// URL returns the configured source URL.
func (c *Client) URL() string { return c.url }

// Mode returns the connection mode implied by the URL shape.
func (c *Client) Mode() Mode { return DetectMode(c.url) }

// Fetch retrieves and normalizes the full working set from the source.
func (c *Client) Fetch(ctx context.Context) ([]domain.Transaction, error) {
	if c.Mode() == ModeReadWrite {
		return c.fetchScript(ctx)
	}
	return c.fetchCSV(ctx)
}

func (c *Client) fetchCSV(ctx context.Context) ([]domain.Transaction, error) {
	if !strings.Contains(c.url, "google.com/spreadsheets") || !strings.Contains(c.url, "output=csv") {
		return nil, fmt.Errorf("invalid URL for read-only mode: use a 'Publish to web' CSV link")
	}

	body, err := c.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CSV: %w", err)
	}
	return ingest.ParseCSV(string(body)), nil
}

func (c *Client) fetchScript(ctx context.Context) ([]domain.Transaction, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from script: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("script returned invalid data format")
	}
	return ingest.FromScriptRows(rows, time.Now()), nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source responded %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// addRow is the transaction shape the Apps Script add action expects.
// Status "Active" keeps the row visible to the soft-delete filter.
type addRow struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
}

type writeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Append records one transaction at the source via the script endpoint.
func (c *Client) Append(ctx context.Context, t domain.Transaction) error {
	payload := map[string]any{
		"action": "add",
		"transaction": addRow{
			ID:          t.ID,
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.Amount,
			Category:    t.Category,
			Type:        string(t.Type),
			Status:      "Active",
		},
	}
	resp, err := c.post(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to save to sheet: %w", err)
	}
	if resp.Status != "success" {
		return fmt.Errorf("sheet rejected add: %s", orDefault(resp.Message, "save failed"))
	}
	return nil
}

// MarkDeleted soft-deletes one row at the source: the script flips its
// status column to Deleted, it never removes the row.
func (c *Client) MarkDeleted(ctx context.Context, id string) error {
	resp, err := c.post(ctx, map[string]any{"action": "delete", "id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from sheet: %w", err)
	}
	if resp.Status != "success" {
		return fmt.Errorf("sheet rejected delete: %s", orDefault(resp.Message, "delete failed"))
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload any) (*writeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// Apps Script web apps only accept simple cross-origin requests;
	// text/plain matches what deployed scripts parse from postData.
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source responded %s", resp.Status)
	}

	var out writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("unexpected script response: %w", err)
	}
	return &out, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
