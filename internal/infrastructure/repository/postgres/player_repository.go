package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func filteredPlayers(filter player.ListFilter) *qb.SelectBuilder {
	b := qb.Select(playerSelectColumns...).From(playersTable)
	if filter.Name != "" {
		b.Where(qb.Contains("name", filter.Name))
	}
	if filter.Team != "" {
		b.Where(qb.Contains("team", filter.Team))
	}
	if filter.Nationality != "" {
		b.Where(qb.Contains("nationality", filter.Nationality))
	}
	return b
}

func (r *PlayerRepository) List(ctx context.Context, filter player.ListFilter) ([]player.Player, error) {
	query, args, err := filteredPlayers(filter).
		OrderBy("id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build select players query")
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select players")
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) Count(ctx context.Context, filter player.ListFilter) (int, error) {
	query, args, err := filteredPlayers(filter).CountBuilder().ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build count players query")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, crerr.Wrap(err, "count players")
	}
	return total, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From(playersTable).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, crerr.Wrap(err, "build get player query")
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, crerr.Wrapf(err, "get player id=%d", id)
	}
	return row.toDomain(), true, nil
}

// WithinTx holds one pooled connection for the whole batch. READ COMMITTED is
// enough: FindByName takes row locks and readers only ever see committed rows.
func (r *PlayerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx player.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return crerr.Wrap(err, "begin players tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &playerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit players tx")
	}
	return nil
}

type playerTx struct {
	tx *sqlx.Tx
}

func (t *playerTx) FindByName(ctx context.Context, name string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From(playersTable).
		Where(qb.Eq("name", name)).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		return player.Player{}, false, crerr.Wrap(err, "build find player query")
	}

	var row playerTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, crerr.Wrap(err, "find player by name")
	}
	return row.toDomain(), true, nil
}

func (t *playerTx) Insert(ctx context.Context, row player.Stats, at time.Time) (int64, error) {
	query, args, err := qb.InsertModel(playersTable, playerModelFromStats(row, at), "RETURNING id")
	if err != nil {
		return 0, crerr.Wrap(err, "build insert player query")
	}

	var id int64
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, crerr.Wrapf(err, "player name=%q was inserted by a concurrent run", row.Name)
		}
		return 0, crerr.Wrap(err, "insert player")
	}
	return id, nil
}

func (t *playerTx) Update(ctx context.Context, id int64, row player.Stats, at time.Time) error {
	query, args, err := qb.UpdateModel(playersTable, playerModelFromStats(row, at), qb.Eq("id", id))
	if err != nil {
		return crerr.Wrap(err, "build update player query")
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return crerr.Wrapf(err, "update player id=%d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return crerr.Wrap(err, "update player rows affected")
	}
	if affected != 1 {
		return crerr.Newf("update player id=%d affected %d rows", id, affected)
	}
	return nil
}
