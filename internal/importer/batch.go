package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mustafahasanain/bookstock/internal/googlebooks"
	"github.com/mustafahasanain/bookstock/internal/parser"
)

// BookSearcher looks up a single best-match book record per title.
type BookSearcher interface {
	SearchBook(ctx context.Context, title string) (*googlebooks.Book, error)
}

// ProgressReporter receives batch lifecycle updates. All methods may be
// called from the worker goroutine; reporting failures are logged and
// never interrupt the batch.
type ProgressReporter interface {
	StartBatch(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteBatch(succeeded bool, errorMsg string) error
	RecordItem(position int, title string, success bool, message string, productID uint) error
}

// BatchRunner processes parsed book lines one at a time: look up the book,
// merge in the operator-supplied price and quantity, import it, report
// progress. A failed item never aborts the batch.
type BatchRunner struct {
	searcher BookSearcher
	importer *Importer

	// ItemDelay is slept between consecutive items to stay polite with
	// the search provider. Not applied after the last item.
	ItemDelay time.Duration

	// OnResult, when set, is invoked after every item with its result.
	OnResult func(position int, result Result)
}

// NewBatchRunner creates a batch runner.
func NewBatchRunner(searcher BookSearcher, imp *Importer, itemDelay time.Duration) *BatchRunner {
	return &BatchRunner{
		searcher:  searcher,
		importer:  imp,
		ItemDelay: itemDelay,
	}
}

// Summary aggregates the outcome of one batch.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// Run imports all lines sequentially. The category applies to every item
// in the batch. Progress is pushed to reporter when one is given; a nil
// reporter is valid for synchronous callers.
func (b *BatchRunner) Run(ctx context.Context, lines []parser.Line, category string, reporter ProgressReporter) (*Summary, error) {
	summary := &Summary{
		Total:   len(lines),
		Results: make([]Result, 0, len(lines)),
	}

	if reporter != nil {
		if err := reporter.StartBatch(len(lines)); err != nil {
			log.Printf("[TASK] Failed to mark batch started: %v", err)
		}
	}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			b.complete(reporter, false, fmt.Sprintf("batch interrupted: %v", err))
			return summary, err
		}

		result := b.processLine(ctx, line, category)
		summary.Results = append(summary.Results, result)

		switch {
		case result.Success:
			summary.Succeeded++
		case result.Skipped:
			summary.Skipped++
		default:
			summary.Failed++
		}

		if reporter != nil {
			if err := reporter.RecordItem(i+1, line.Title, result.Success, result.Message, result.ProductID); err != nil {
				log.Printf("[TASK] Failed to record item result: %v", err)
			}
			if err := reporter.UpdateProgress(i+1, summary.Succeeded, summary.Failed, summary.Skipped, line.Title); err != nil {
				log.Printf("[TASK] Failed to update batch progress: %v", err)
			}
		}

		if b.OnResult != nil {
			b.OnResult(i+1, result)
		}

		if b.ItemDelay > 0 && i < len(lines)-1 {
			select {
			case <-ctx.Done():
				b.complete(reporter, false, fmt.Sprintf("batch interrupted: %v", ctx.Err()))
				return summary, ctx.Err()
			case <-time.After(b.ItemDelay):
			}
		}
	}

	b.complete(reporter, true, "")
	return summary, nil
}

func (b *BatchRunner) processLine(ctx context.Context, line parser.Line, category string) Result {
	book, err := b.searcher.SearchBook(ctx, line.Title)
	if err != nil {
		return Result{
			Success: false,
			Title:   line.Title,
			Message: searchFailureMessage(err),
		}
	}

	return b.importer.Import(ctx, Request{
		Book:     *book,
		Price:    line.Price,
		Quantity: line.Quantity,
		Category: category,
	})
}

func (b *BatchRunner) complete(reporter ProgressReporter, succeeded bool, errorMsg string) {
	if reporter == nil {
		return
	}
	if err := reporter.CompleteBatch(succeeded, errorMsg); err != nil {
		log.Printf("[TASK] Failed to mark batch complete: %v", err)
	}
}

func searchFailureMessage(err error) string {
	switch {
	case errors.Is(err, googlebooks.ErrNoAPIKey):
		return "Google Books API key is not configured"
	case errors.Is(err, googlebooks.ErrNotFound):
		return "book not found in Google Books"
	default:
		return fmt.Sprintf("Google Books lookup failed: %v", err)
	}
}
