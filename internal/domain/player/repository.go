package player

import (
	"context"
	"time"
)

// ListFilter holds case-insensitive substring filters; empty means no filter.
type ListFilter struct {
	Name        string
	Team        string
	Nationality string
	Limit       int
	Offset      int
}

// Reader is the read side used by the query API.
type Reader interface {
	List(ctx context.Context, filter ListFilter) ([]Player, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	GetByID(ctx context.Context, id int64) (Player, bool, error)
}

// Store runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error rolls everything back.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the explicit find-then-write contract used for upserts.
type Tx interface {
	// FindByName locks the row (if any) until the transaction ends.
	FindByName(ctx context.Context, name string) (Player, bool, error)
	Insert(ctx context.Context, row Stats, at time.Time) (int64, error)
	Update(ctx context.Context, id int64, row Stats, at time.Time) error
}
