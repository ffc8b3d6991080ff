package player

import (
	"context"
	"errors"
)

// ErrUnknownLeague is returned by a Source before any network call when it
// cannot map the league identifier.
var ErrUnknownLeague = errors.New("unknown league")

// SourceBatch is one full upstream response for a league and season.
type SourceBatch struct {
	Records []RawRecord
	// Raw is the undecoded response body, kept for archiving.
	Raw []byte
}

// Source fetches every player record of one league season in a single call.
type Source interface {
	FetchLeaguePlayers(ctx context.Context, league string, season int) (SourceBatch, error)
}

// Archiver keeps a copy of the raw upstream payload.
type Archiver interface {
	Archive(ctx context.Context, league string, season int, raw []byte) error
}
