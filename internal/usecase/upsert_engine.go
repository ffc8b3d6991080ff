package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

// UpsertEngine merges a normalized batch into the store, keyed by player name,
// as one transaction.
type UpsertEngine struct {
	store  player.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewUpsertEngine(store player.Store, logger *logging.Logger) *UpsertEngine {
	if logger == nil {
		logger = logging.Default()
	}
	return &UpsertEngine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Apply writes rows and returns how many distinct players were written.
//
// Duplicate names keep the last occurrence. Every touched row gets the same
// last_updated stamp, unless its stored stamp is already later (clock skew),
// in which case the stored stamp is kept. The transaction ignores cancellation
// of ctx once started.
func (e *UpsertEngine) Apply(ctx context.Context, rows []player.Stats) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UpsertEngine.Apply", attribute.Int("batch.size", len(rows)))
	defer span.End()

	batch, err := lastOccurrenceWins(rows)
	if err != nil {
		e.logger.ErrorContext(ctx, "refusing malformed upsert batch", "error", err)
		recordSpanError(span, err)
		return 0, err
	}

	at := e.now().UTC()
	inserted, updated := 0, 0
	err = e.store.WithinTx(context.WithoutCancel(ctx), func(ctx context.Context, tx player.Tx) error {
		inserted, updated = 0, 0
		for _, row := range batch {
			existing, found, err := tx.FindByName(ctx, row.Name)
			if err != nil {
				return fmt.Errorf("find player name=%q: %w", row.Name, err)
			}
			if !found {
				if _, err := tx.Insert(ctx, row, at); err != nil {
					return fmt.Errorf("insert player name=%q: %w", row.Name, err)
				}
				inserted++
				continue
			}

			stamp := at
			if existing.LastUpdated.After(stamp) {
				stamp = existing.LastUpdated
			}
			if err := tx.Update(ctx, existing.ID, row, stamp); err != nil {
				return fmt.Errorf("update player id=%d name=%q: %w", existing.ID, row.Name, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageFailure, err)
		recordSpanError(span, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("batch.inserted", inserted), attribute.Int("batch.updated", updated))
	e.logger.InfoContext(ctx, "upsert batch committed",
		"applied", len(batch),
		"inserted", inserted,
		"updated", updated,
		"last_updated", at,
	)
	return len(batch), nil
}

func lastOccurrenceWins(rows []player.Stats) ([]player.Stats, error) {
	if len(rows) == 0 {
		return nil, invariantViolation("upsert batch is empty")
	}

	index := make(map[string]int, len(rows))
	out := make([]player.Stats, 0, len(rows))
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, invariantViolation("row %d: %v", i, err)
		}
		if pos, ok := index[row.Name]; ok {
			out[pos] = row
			continue
		}
		index[row.Name] = len(out)
		out = append(out, row)
	}
	return out, nil
}

// invariantViolation marks input that should never reach the engine. The
// assertion error carries a stack trace for the error log.
func invariantViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrInvariantViolation, crerr.AssertionFailedf(format, args...))
}
