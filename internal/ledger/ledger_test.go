package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/reconcile"
	"github.com/aditsw/smartsheet/internal/sheet"
)

// fakeSource is a scriptable in-memory Source.
type fakeSource struct {
	mu        sync.Mutex
	mode      sheet.Mode
	fetch     []domain.Transaction
	fetchErr  error
	appendErr error
	deleteErr error
	appended  []domain.Transaction
	deleted   []string
	release   chan struct{} // when set, Fetch blocks until closed
}

func (f *fakeSource) URL() string { return "https://example.test/" + string(f.mode) }
func (f *fakeSource) Mode() sheet.Mode { return f.mode }

func (f *fakeSource) Fetch(ctx context.Context) ([]domain.Transaction, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetch, f.fetchErr
}

func (f *fakeSource) Append(ctx context.Context, t domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, t)
	return nil
}

func (f *fakeSource) MarkDeleted(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func testLedger(src *fakeSource) *Ledger {
	l := New(nil, zerolog.Nop())
	if src != nil {
		l.SetSource(src)
	}
	return l
}

func TestSync_ReplacesWorkingSet(t *testing.T) {
	src := &fakeSource{
		mode: sheet.ModeReadOnly,
		fetch: []domain.Transaction{
			{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5, Category: "Food & Dining", Type: domain.Expense},
			{ID: "b", Date: "2024-05-02", Description: "Rent", Amount: 1200, Category: "Housing", Type: domain.Expense},
		},
	}
	l := testLedger(src)
	l.Seed([]domain.Transaction{{ID: "stale", Date: "2020-01-01", Description: "Old", Amount: 1}})

	if err := l.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := l.Transactions()
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	for _, tr := range got {
		if tr.ID == "stale" {
			t.Error("previous working set must be fully replaced")
		}
	}
	// Merge sorts date descending.
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("expected date-descending order, got %+v", got)
	}
}

func TestSync_FetchFailureKeepsWorkingSet(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadOnly, fetchErr: errors.New("boom")}
	l := testLedger(src)
	seed := []domain.Transaction{{ID: "keep", Date: "2024-05-01", Description: "Keep", Amount: 1, Category: "Other"}}
	l.Seed(seed)

	if err := l.Sync(context.Background()); err == nil {
		t.Fatal("expected sync error")
	}

	got := l.Transactions()
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("failed sync must leave the working set untouched, got %+v", got)
	}
	if st := l.Status(time.Now()); st.LastError == "" {
		t.Error("expected LastError to be recorded")
	}
}

func TestSync_BusyGuard(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{mode: sheet.ModeReadOnly, release: release}
	l := testLedger(src)

	done := make(chan error, 1)
	go func() { done <- l.Sync(context.Background()) }()

	// Wait for the first sync to enter its fetch.
	deadline := time.After(2 * time.Second)
	for {
		if l.Status(time.Now()).Syncing {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first sync never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := l.Sync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	// The guard clears once the sync finishes.
	if err := l.Sync(context.Background()); err != nil {
		t.Errorf("sync after completion should succeed, got %v", err)
	}
}

func TestSync_NoSource(t *testing.T) {
	l := testLedger(nil)
	if err := l.Sync(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestAdd_ReadWrite(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadWrite}
	l := testLedger(src)

	warning, err := l.Add(context.Background(), domain.Transaction{Description: "Coffee", Amount: 4.5})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if warning != "" {
		t.Errorf("expected no warning on a clean write, got %q", warning)
	}
	if len(src.appended) != 1 {
		t.Fatalf("expected 1 remote append, got %d", len(src.appended))
	}
	if got := l.Transactions(); len(got) != 1 || got[0].Description != "Coffee" {
		t.Errorf("unexpected working set: %+v", got)
	}
	if got := l.Transactions(); got[0].ID == "" || got[0].Date == "" {
		t.Errorf("expected id and date defaults, got %+v", got[0])
	}
}

func TestAdd_RemoteFailureKeepsLocal(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadWrite, appendErr: errors.New("script down")}
	l := testLedger(src)

	warning, err := l.Add(context.Background(), domain.Transaction{Description: "Coffee", Amount: 4.5})
	if err != nil {
		t.Fatalf("Add must not fail on a remote error: %v", err)
	}
	if warning == "" {
		t.Error("expected a warning when the remote write fails")
	}
	if got := l.Transactions(); len(got) != 1 {
		t.Errorf("local record must be kept, got %+v", got)
	}
}

func TestAdd_ReadOnlyWarns(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadOnly}
	l := testLedger(src)

	warning, err := l.Add(context.Background(), domain.Transaction{Description: "Coffee", Amount: 4.5})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if warning == "" {
		t.Error("expected a warning in read-only mode")
	}
	if len(src.appended) != 0 {
		t.Error("read-only mode must not attempt a remote write")
	}
}

func TestDelete_ReadWrite(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadWrite}
	l := testLedger(src)
	l.Seed([]domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
		{ID: "b", Date: "2024-05-02", Description: "Rent", Amount: 1200},
	})

	if err := l.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := l.Transactions(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("unexpected working set after delete: %+v", got)
	}
	if len(src.deleted) != 1 || src.deleted[0] != "a" {
		t.Errorf("expected remote soft-delete of a, got %v", src.deleted)
	}
}

func TestDelete_RemoteFailureRollsBack(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadWrite, deleteErr: errors.New("script down")}
	l := testLedger(src)
	l.Seed([]domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
		{ID: "b", Date: "2024-05-02", Description: "Rent", Amount: 1200},
	})

	if err := l.Delete(context.Background(), "b"); err == nil {
		t.Fatal("expected an error when the remote delete fails")
	}

	got := l.Transactions()
	if len(got) != 2 {
		t.Fatalf("record must be restored after rollback, got %+v", got)
	}
	if got[1].ID != "b" {
		t.Errorf("restored record must keep its position, got %+v", got)
	}
}

func TestDelete_ReadOnlyIsLocal(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadOnly}
	l := testLedger(src)
	l.Seed([]domain.Transaction{{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5}})

	if err := l.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(src.deleted) != 0 {
		t.Error("read-only mode must not call the remote")
	}
	if got := l.Transactions(); len(got) != 0 {
		t.Errorf("expected local removal, got %+v", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	l := testLedger(&fakeSource{mode: sheet.ModeReadWrite})
	if err := l.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	src := &fakeSource{mode: sheet.ModeReadWrite}
	l := testLedger(src)
	l.Seed([]domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
		{ID: "b", Date: "2022-01-01", Description: "Old", Amount: 10},
	})

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	st := l.Status(now)

	if st.Mode != sheet.ModeReadWrite {
		t.Errorf("Mode = %s, want read-write", st.Mode)
	}
	if st.Count != 2 {
		t.Errorf("Count = %d, want 2", st.Count)
	}
	if st.Syncing {
		t.Error("Syncing should be false at rest")
	}
	wantYears := []int{2026, 2024, 2022}
	if len(st.Years) != len(wantYears) {
		t.Fatalf("Years = %v, want %v", st.Years, wantYears)
	}
	for i := range wantYears {
		if st.Years[i] != wantYears[i] {
			t.Fatalf("Years = %v, want %v", st.Years, wantYears)
		}
	}
}

// categorizer wiring: sync runs pending rows through the categorizer.
type stubCategorizer struct{ calls int }

func (s *stubCategorizer) Categorize(ctx context.Context, reqs []reconcile.Request) ([]reconcile.Result, error) {
	s.calls++
	out := make([]reconcile.Result, len(reqs))
	for i, r := range reqs {
		out[i] = reconcile.Result{Token: r.Token, Category: "Shopping", Type: domain.Expense}
	}
	return out, nil
}

func TestSync_RunsCategorization(t *testing.T) {
	src := &fakeSource{
		mode: sheet.ModeReadOnly,
		fetch: []domain.Transaction{
			{ID: "a", Date: "2024-05-01", Description: "Mystery", Amount: 9.99, Category: domain.Uncategorized},
		},
	}
	cat := &stubCategorizer{}
	l := New(cat, zerolog.Nop())
	l.SetSource(src)

	if err := l.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cat.calls != 1 {
		t.Errorf("expected one categorizer call, got %d", cat.calls)
	}
	if got := l.Transactions(); got[0].Category != "Shopping" {
		t.Errorf("expected enrichment applied, got %+v", got[0])
	}
}
