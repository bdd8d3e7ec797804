// Package services hosts the tracker workflows: submission with
// duplicate gating, pending-confirmation handling, bulk file import and
// insight analysis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oraculx/financewise/internal/core"
	"github.com/oraculx/financewise/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	// Committed means the submission was appended to the store.
	Committed SubmitStatus = "committed"
	// AwaitingConfirmation means a duplicate was detected and the
	// candidate is retained until the user confirms or cancels.
	AwaitingConfirmation SubmitStatus = "awaiting_confirmation"
)

// DefaultDescription fills in records the extraction gateway returned
// without one.
const DefaultDescription = "Sin descripción"

var (
	ErrNothingPending   = errors.New("no submission awaiting confirmation")
	ErrAnalysisInFlight = errors.New("an analysis request is already in flight")
	ErrNoTransactions   = errors.New("no transactions to analyze")
)

type (
	SubmitStatus string

	// SubmitInput is a raw form submission. Amount arrives as entered by
	// the user; an unparseable value is a validation failure, not an
	// exception.
	SubmitInput struct {
		Description string
		Amount      string
		Category    core.Category
		Type        core.TxType
		Recurring   bool
	}

	SubmitResult struct {
		Status         SubmitStatus
		Classification core.Classification
		Transaction    core.Transaction
	}

	// InsightProvider is the AI insight gateway boundary.
	InsightProvider interface {
		Insights(ctx context.Context, txs []core.Transaction) (core.AIAnalysis, error)
	}

	// Extractor is the AI statement-extraction gateway boundary.
	Extractor interface {
		Extract(ctx context.Context, data []byte, mimeType string) ([]core.ExtractedRecord, error)
	}
)

// Tracker orchestrates all mutations of the store. At most one
// submission can be awaiting confirmation at a time, matching the
// single modal of the UI.
type Tracker struct {
	store     *storage.Store
	insights  InsightProvider
	extractor Extractor

	// Mutual exclusion for the analysis action: a second request while
	// one is outstanding is refused, not queued.
	analysisGate *semaphore.Weighted

	mu      sync.Mutex
	pending *pendingSubmission

	now func() time.Time
}

type pendingSubmission struct {
	tx        core.Transaction
	recurring bool
	kind      core.Classification
}

func NewTracker(store *storage.Store, insights InsightProvider, extractor Extractor) *Tracker {
	return &Tracker{
		store:        store,
		insights:     insights,
		extractor:    extractor,
		analysisGate: semaphore.NewWeighted(1),
		now:          time.Now,
	}
}

// Submit validates and classifies a candidate transaction. A novel
// candidate is committed immediately; an exact or partial duplicate is
// retained and surfaced for confirmation with no store mutation.
func (t *Tracker) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return SubmitResult{}, core.ErrEmptyDescription
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return SubmitResult{}, core.ErrInvalidAmount
	}

	category := in.Category
	if category == "" {
		category = core.Other
	}
	if !category.Valid() {
		return SubmitResult{}, core.ErrInvalidCategory
	}

	txType := in.Type
	if txType == "" {
		txType = core.Expense
	}
	if !txType.Valid() {
		return SubmitResult{}, core.ErrInvalidType
	}

	candidate := core.Transaction{
		ID:          uuid.NewString(),
		Description: desc,
		Amount:      amount,
		Category:    category,
		Type:        txType,
		Date:        t.now().Format(core.DateLayout),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	kind := core.Classify(candidate, t.store.Transactions())
	if kind == core.Novel {
		if err := t.commitLocked(ctx, candidate, in.Recurring); err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{Status: Committed, Classification: kind, Transaction: candidate}, nil
	}

	t.pending = &pendingSubmission{tx: candidate, recurring: in.Recurring, kind: kind}
	slog.InfoContext(ctx, "Duplicate detected, awaiting confirmation",
		"classification", kind,
		"description", candidate.Description,
		"amount", candidate.Amount)
	return SubmitResult{Status: AwaitingConfirmation, Classification: kind, Transaction: candidate}, nil
}

// Confirm commits the retained candidate ("add anyway").
func (t *Tracker) Confirm(ctx context.Context) (core.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		return core.Transaction{}, ErrNothingPending
	}

	p := t.pending
	if err := t.commitLocked(ctx, p.tx, p.recurring); err != nil {
		return core.Transaction{}, err
	}
	t.pending = nil
	return p.tx, nil
}

// Cancel discards the retained candidate with no store mutation.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		return ErrNothingPending
	}
	t.pending = nil
	return nil
}

// commitLocked appends the transaction and, when flagged, bookmarks its
// raw description. Callers hold t.mu.
func (t *Tracker) commitLocked(ctx context.Context, tx core.Transaction, recurring bool) error {
	if err := t.store.Append(ctx, tx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if recurring {
		if _, err := t.store.AddRecurring(ctx, tx.Description); err != nil {
			// The transaction itself is committed; losing the bookmark is
			// not worth failing the submission.
			slog.ErrorContext(ctx, "Failed to save recurring description",
				"description", tx.Description, "error", err)
		}
	}
	return nil
}

// Delete removes a transaction by id.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.store.Remove(ctx, id)
}

// RemoveRecurring deletes a bookmarked description.
func (t *Tracker) RemoveRecurring(ctx context.Context, desc string) error {
	return t.store.RemoveRecurring(ctx, desc)
}

// Transactions returns the current list, most-recent-first.
func (t *Tracker) Transactions() []core.Transaction {
	return t.store.Transactions()
}

// Recurring returns the bookmarked description labels.
func (t *Tracker) Recurring() []string {
	return t.store.Recurring()
}

// Totals recomputes the aggregates from the current list.
func (t *Tracker) Totals() core.Totals {
	return core.Aggregate(t.store.Transactions())
}

// Import extracts transactions from an uploaded file and bulk-prepends
// them, bypassing the duplicate gate. Extraction failures are absorbed
// here: the result is simply zero imported records.
func (t *Tracker) Import(ctx context.Context, data []byte, mimeType string) (int, error) {
	if t.extractor == nil {
		slog.WarnContext(ctx, "Extraction gateway not configured, skipping import")
		return 0, nil
	}

	records, err := t.extractor.Extract(ctx, data, mimeType)
	if err != nil {
		slog.ErrorContext(ctx, "Extraction gateway call failed", "error", err, "mime_type", mimeType)
		return 0, nil
	}
	if len(records) == 0 {
		return 0, nil
	}

	today := t.now().Format(core.DateLayout)
	txs := make([]core.Transaction, len(records))
	for i, r := range records {
		txs[i] = defaultRecord(r, today)
	}

	if err := t.store.AppendBulk(ctx, txs); err != nil {
		return 0, fmt.Errorf("import transactions: %w", err)
	}
	return len(txs), nil
}

// defaultRecord fills a partial extracted record into a full
// transaction with a fresh id.
func defaultRecord(r core.ExtractedRecord, today string) core.Transaction {
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Description: r.Description,
		Amount:      r.Amount,
		Category:    core.Category(r.Category),
		Type:        core.TxType(r.Type),
		Date:        r.Date,
	}
	if tx.Description == "" {
		tx.Description = DefaultDescription
	}
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount < 0 {
		tx.Amount = 0
	}
	if !tx.Category.Valid() {
		tx.Category = core.Other
	}
	if !tx.Type.Valid() {
		tx.Type = core.Expense
	}
	if _, err := time.Parse(core.DateLayout, tx.Date); err != nil {
		tx.Date = today
	}
	return tx
}

// Analyze runs the insight analysis over the current transactions.
// Gateway failures degrade to the documented fallback analysis; only
// one analysis may be in flight at a time.
func (t *Tracker) Analyze(ctx context.Context) (core.AIAnalysis, error) {
	txs := t.store.Transactions()
	if len(txs) == 0 {
		return core.AIAnalysis{}, ErrNoTransactions
	}

	if !t.analysisGate.TryAcquire(1) {
		return core.AIAnalysis{}, ErrAnalysisInFlight
	}
	defer t.analysisGate.Release(1)

	if t.insights == nil {
		slog.WarnContext(ctx, "Insight gateway not configured")
		return core.FallbackAnalysis(), nil
	}

	analysis, err := t.insights.Insights(ctx, txs)
	if err != nil {
		slog.ErrorContext(ctx, "Insight gateway call failed", "error", err, "transactions", len(txs))
		return core.FallbackAnalysis(), nil
	}
	return analysis, nil
}
