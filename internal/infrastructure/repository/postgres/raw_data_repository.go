package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

// RawPayloadRepository archives raw upstream responses in the raw_payloads
// table. Identical payloads for the same league season are stored once.
type RawPayloadRepository struct {
	db     *sqlx.DB
	source string
	now    func() time.Time
}

func NewRawPayloadRepository(db *sqlx.DB, source string) *RawPayloadRepository {
	return &RawPayloadRepository{db: db, source: source, now: time.Now}
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	League      string    `db:"league"`
	Season      int       `db:"season"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}

func (r *RawPayloadRepository) Archive(ctx context.Context, league string, season int, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}

	sum := sha256.Sum256(raw)
	model := rawPayloadInsertModel{
		Source:      r.source,
		League:      league,
		Season:      season,
		Payload:     string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   r.now().UTC(),
	}

	query, args, err := qb.InsertModel("raw_payloads", model,
		"ON CONFLICT (source, league, season, payload_hash) DO UPDATE SET fetched_at = EXCLUDED.fetched_at")
	if err != nil {
		return crerr.Wrap(err, "build insert raw payload query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert raw payload league=%s season=%d", league, season)
	}
	return nil
}
