// Package assistant wraps the Gemini API behind the three collaborators
// the dashboard uses: transaction categorization, spending insights, and
// receipt scanning.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/reconcile"
)

// ModelName is used for all calls. Flash keeps latency low enough for
// interactive categorization batches.
const ModelName = "gemini-2.5-flash"

// Canned responses for the insight collaborator; it degrades to text
// instead of surfacing errors to the chat surface.
const (
	insightEmptyFallback = "I couldn't generate an analysis at this time."
	insightErrorFallback = "Sorry, I encountered an error analyzing your data."
)

// Assistant holds one shared Gemini client.
type Assistant struct {
	client *genai.Client
	log    zerolog.Logger
}

// New creates the Gemini client. With an empty apiKey the SDK falls back
// to its own environment lookup.
func New(ctx context.Context, apiKey string, log zerolog.Logger) (*Assistant, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant.New: create genai client: %w", err)
	}
	return &Assistant{client: client, log: log}, nil
}

// categorizedRow is the response row shape for a categorization call. The
// token echoes the request's correlation key so results survive reordering.
type categorizedRow struct {
	Token    string `json:"token"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

func categorizeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"token":    {Type: genai.TypeString},
				"category": {Type: genai.TypeString},
				"type":     {Type: genai.TypeString, Enum: []string{"INCOME", "EXPENSE"}},
			},
			PropertyOrdering: []string{"token", "category", "type"},
		},
	}
}

// Categorize asks the model to assign a category and type to each request
// and maps the answers back by token.
func (a *Assistant) Categorize(ctx context.Context, reqs []reconcile.Request) ([]reconcile.Result, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildCategorizePrompt(reqs)}},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   categorizeSchema(),
	}

	resp, err := a.client.Models.GenerateContent(ctx, ModelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Categorize: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("Categorize: empty response from model")
	}

	var rows []categorizedRow
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &rows); err != nil {
		return nil, fmt.Errorf("Categorize: unmarshal JSON: %w", err)
	}

	a.log.Debug().Int("requested", len(reqs)).Int("returned", len(rows)).Msg("categorization batch complete")

	results := make([]reconcile.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, reconcile.Result{
			Token:    r.Token,
			Category: r.Category,
			Type:     domain.ParseType(r.Type),
		})
	}
	return results, nil
}

// Insights analyzes the transaction list, optionally steered by a user
// question. It never returns an error: the failure modes collapse to
// fixed fallback strings because the caller renders whatever comes back.
func (a *Assistant) Insights(ctx context.Context, txs []domain.Transaction, userQuery string) string {
	prompt, err := buildInsightPrompt(txs, userQuery)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to build insight prompt")
		return insightErrorFallback
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: insightSystemInstruction}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, ModelName, contents, cfg)
	if err != nil {
		a.log.Error().Err(err).Msg("insight generation failed")
		return insightErrorFallback
	}
	if text := resp.Text(); text != "" {
		return text
	}
	return insightEmptyFallback
}

// receiptRow is the single aggregated record the model extracts from a
// receipt image.
type receiptRow struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

func receiptSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount":      {Type: genai.TypeNumber},
			"date":        {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"category":    {Type: genai.TypeString},
		},
		PropertyOrdering: []string{"amount", "date", "description", "category"},
	}
}

// ScanReceipt extracts one expense draft from a receipt image. Unlike
// the other collaborators it propagates failure: the caller shows the
// error and asks the user to enter the transaction manually.
func (a *Assistant) ScanReceipt(ctx context.Context, mimeType string, image []byte) (domain.Transaction, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: receiptPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   receiptSchema(),
	}

	resp, err := a.client.Models.GenerateContent(ctx, ModelName, contents, cfg)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("ScanReceipt: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return domain.Transaction{}, fmt.Errorf("ScanReceipt: empty response from model")
	}

	var row receiptRow
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &row); err != nil {
		return domain.Transaction{}, fmt.Errorf("ScanReceipt: unmarshal JSON: %w", err)
	}
	if row.Amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("ScanReceipt: no total found on receipt")
	}

	t := domain.Transaction{
		ID:          domain.ManualID(),
		Date:        row.Date,
		Description: row.Description,
		Amount:      row.Amount,
		Category:    row.Category,
		Type:        domain.Expense,
	}
	if t.Date == "" {
		t.Date = time.Now().Format("2006-01-02")
	}
	if t.Description == "" {
		t.Description = domain.UnknownDescription
	}
	if t.Category == "" {
		t.Category = domain.CategoryOther
	}
	return t, nil
}
