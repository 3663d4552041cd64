// Package ledger holds the in-memory working set of transactions and
// coordinates syncs and optimistic writes against the spreadsheet source.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/reconcile"
	"github.com/aditsw/smartsheet/internal/sheet"
	"github.com/aditsw/smartsheet/internal/summary"
)

// Source is the spreadsheet behind the ledger. *sheet.Client satisfies it;
// tests substitute fakes.
type Source interface {
	URL() string
	Mode() sheet.Mode
	Fetch(ctx context.Context) ([]domain.Transaction, error)
	Append(ctx context.Context, t domain.Transaction) error
	MarkDeleted(ctx context.Context, id string) error
}

// WritePolicy names how a failed remote write reconciles with the local
// working set.
type WritePolicy string

const (
	// KeepWithWarning applies to adds: the local record stays and the
	// caller gets a warning that it may vanish on the next sync.
	KeepWithWarning WritePolicy = "keep-with-warning"
	// RollbackOnFailure applies to deletes: the removed record is
	// restored so the view never disagrees with the sheet.
	RollbackOnFailure WritePolicy = "rollback-on-failure"
)

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrNoSource       = errors.New("no source configured")
	ErrNotFound       = errors.New("transaction not found")
)

// Warning texts returned alongside successful optimistic writes.
const (
	warnReadOnlySave = "Saved locally. Connect an Apps Script URL to write changes back to the sheet."
	warnRemoteSave   = "Saved locally, but writing to the sheet failed. The entry may disappear on the next sync."
)

// Ledger is safe for concurrent use by the API handlers.
type Ledger struct {
	mu          sync.Mutex
	txs         []domain.Transaction
	source      Source
	categorizer reconcile.Categorizer
	syncing     bool
	lastUpdated time.Time
	lastError   string
	log         zerolog.Logger
}

// New builds an empty ledger. The categorizer may be nil, in which case
// uncategorized records fall straight to their defaults during sync.
func New(cat reconcile.Categorizer, log zerolog.Logger) *Ledger {
	return &Ledger{categorizer: cat, log: log}
}

// SetSource swaps the spreadsheet source. The working set is kept until
// the next sync replaces it.
func (l *Ledger) SetSource(s Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.source = s
}

// Seed replaces the working set directly, bypassing any source. Used for
// demo data.
func (l *Ledger) Seed(txs []domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append([]domain.Transaction(nil), txs...)
	l.lastUpdated = time.Now()
	l.lastError = ""
}

// Transactions returns a snapshot copy of the working set.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Transaction(nil), l.txs...)
}

// Sync refetches the source, runs categorization over anything pending,
// and atomically swaps in the result. The working set is never partially
// replaced: until the swap the previous snapshot keeps serving reads, and
// a failed fetch leaves it untouched. Only one sync runs at a time;
// concurrent callers get ErrSyncInProgress instead of queueing.
func (l *Ledger) Sync(ctx context.Context) error {
	l.mu.Lock()
	if l.source == nil {
		l.mu.Unlock()
		return ErrNoSource
	}
	if l.syncing {
		l.mu.Unlock()
		return ErrSyncInProgress
	}
	l.syncing = true
	src := l.source
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.syncing = false
		l.mu.Unlock()
	}()

	started := time.Now()
	fetched, err := src.Fetch(ctx)
	if err != nil {
		l.mu.Lock()
		l.lastError = err.Error()
		l.mu.Unlock()
		l.log.Error().Err(err).Str("mode", string(src.Mode())).Msg("sync failed")
		return fmt.Errorf("Sync: %w", err)
	}

	merged := reconcile.Merge(ctx, l.categorizer, fetched)

	l.mu.Lock()
	l.txs = merged
	l.lastUpdated = time.Now()
	l.lastError = ""
	l.mu.Unlock()

	l.log.Info().
		Int("count", len(merged)).
		Str("mode", string(src.Mode())).
		Dur("took", time.Since(started)).
		Msg("sync complete")
	return nil
}

// Add records a transaction optimistically: the local insert always
// sticks, and a remote write failure comes back as a warning string
// rather than an error (KeepWithWarning).
func (l *Ledger) Add(ctx context.Context, t domain.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = domain.ManualID()
	}
	if t.Date == "" {
		t.Date = time.Now().Format("2006-01-02")
	}
	if t.Category == "" {
		t.Category = domain.CategoryOther
	}
	if t.Type == "" {
		t.Type = domain.Expense
	}

	l.mu.Lock()
	l.txs = append([]domain.Transaction{t}, l.txs...)
	src := l.source
	l.mu.Unlock()

	if src == nil || src.Mode() != sheet.ModeReadWrite {
		return warnReadOnlySave, nil
	}
	if err := src.Append(ctx, t); err != nil {
		l.log.Warn().Err(err).Str("id", t.ID).Str("policy", string(KeepWithWarning)).Msg("remote add failed, keeping local copy")
		return warnRemoteSave, nil
	}
	return "", nil
}

// Delete removes a transaction optimistically. If the remote soft-delete
// fails the record is restored at its original position
// (RollbackOnFailure). In read-only mode the removal is local only and no
// network call is made.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	idx := -1
	for i, t := range l.txs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		l.mu.Unlock()
		return ErrNotFound
	}
	removed := l.txs[idx]
	l.txs = append(l.txs[:idx:idx], l.txs[idx+1:]...)
	src := l.source
	l.mu.Unlock()

	if src == nil || src.Mode() != sheet.ModeReadWrite {
		return nil
	}

	if err := src.MarkDeleted(ctx, id); err != nil {
		l.mu.Lock()
		if idx > len(l.txs) {
			idx = len(l.txs)
		}
		l.txs = append(l.txs[:idx:idx], append([]domain.Transaction{removed}, l.txs[idx:]...)...)
		l.mu.Unlock()
		l.log.Warn().Err(err).Str("id", id).Str("policy", string(RollbackOnFailure)).Msg("remote delete failed, restoring record")
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// Status is the connection/working-set snapshot served by the API.
type Status struct {
	Mode        sheet.Mode `json:"mode"`
	URL         string     `json:"url,omitempty"`
	Syncing     bool       `json:"syncing"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	Count       int        `json:"count"`
	Years       []int      `json:"years"`
}

// Status reports the current connection and working-set state.
func (l *Ledger) Status(now time.Time) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{
		Mode:      sheet.ModeReadOnly,
		Syncing:   l.syncing,
		LastError: l.lastError,
		Count:     len(l.txs),
		Years:     summary.Years(l.txs, now),
	}
	if l.source != nil {
		st.Mode = l.source.Mode()
		st.URL = l.source.URL()
	}
	if !l.lastUpdated.IsZero() {
		st.LastUpdated = l.lastUpdated.Format(time.RFC3339)
	}
	return st
}
