//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/platform/migration"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("football_db"),
		tcpostgres.WithUsername("admin"),
		tcpostgres.WithPassword("securepass123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	_, file, _, _ := runtime.Caller(0)
	dir, err := migration.ResolveDir(filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	m, err := migration.New(dsn, dir)
	require.NoError(t, err)
	require.NoError(t, migration.Up(m))
	require.NoError(t, migration.Close(m))

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPlayerRepository_UpsertAndQuery(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewPlayerRepository(db)
	engine := usecase.NewUpsertEngine(repo, nil)

	batch := []player.Stats{
		{Name: "Mohamed Salah", Team: "Liverpool", Nationality: "Egypt", Goals: 29, ExpectedGoals: decimal.NewNullDecimal(decimal.RequireFromString("27.913848645985126"))},
		{Name: "Erling Haaland", Team: "Manchester City", Nationality: "Norway", Goals: 22},
		{Name: "Alexander Isak", Team: "Newcastle United", Nationality: "Sweden", Goals: 23, Age: player.IntPtr(25)},
	}
	applied, err := engine.Apply(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, 3, applied)

	total, err := repo.Count(ctx, player.ListFilter{Team: "MAN"})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	items, err := repo.List(ctx, player.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Erling Haaland", items[0].Name)

	salah, found, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "27.913848645985126", salah.ExpectedGoals.Decimal.String())
	require.Nil(t, salah.Age)

	batch[0].Goals = 30
	_, err = engine.Apply(ctx, batch[:1])
	require.NoError(t, err)

	updated, _, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 30, updated.Goals)
	require.Equal(t, salah.ID, updated.ID)
	require.False(t, updated.LastUpdated.Before(salah.LastUpdated))

	_, found, err = repo.GetByID(ctx, 999)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPlayerRepository_FilterEscapesWildcards(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewPlayerRepository(db)

	_, err := usecase.NewUpsertEngine(repo, nil).Apply(ctx, []player.Stats{
		{Name: "Player_One", Team: "X"},
		{Name: "PlayerXOne", Team: "X"},
	})
	require.NoError(t, err)

	total, err := repo.Count(ctx, player.ListFilter{Name: "r_o"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestPlayerRepository_TxRollsBack(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewPlayerRepository(db)
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(ctx context.Context, tx player.Tx) error {
		if _, err := tx.Insert(ctx, player.Stats{Name: "A", Team: "X"}, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	total, err := repo.Count(ctx, player.ListFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRawPayloadRepository_ArchiveDeduplicates(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewRawPayloadRepository(db, "understat")

	raw := []byte(`[{"player_name":"A","team_title":"X"}]`)
	require.NoError(t, repo.Archive(ctx, "epl", 2025, raw))
	require.NoError(t, repo.Archive(ctx, "epl", 2025, raw))

	var total int
	require.NoError(t, db.GetContext(ctx, &total, "SELECT COUNT(*) FROM raw_payloads"))
	require.Equal(t, 1, total)
}

func TestPlayerRepository_OutOfRangeRecordDoesNotAbortBatch(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewPlayerRepository(db)

	records := []player.RawRecord{
		{"player_name": player.TextValue("Bukayo Saka"), "team_title": player.TextValue("Arsenal"), "time": player.NumberValue("2400")},
		{"player_name": player.TextValue("Overflow"), "team_title": player.TextValue("Arsenal"), "time": player.TextValue("99999999999"), "age": player.NumberValue("4294967321")},
		{"player_name": player.TextValue("Declan Rice"), "team_title": player.TextValue("Arsenal"), "games": player.NumberValue("35")},
	}
	rows, rejections := player.NewNormalizer(player.CoercionLenient).NormalizeBatch(records)
	require.Empty(t, rejections)

	applied, err := usecase.NewUpsertEngine(repo, nil).Apply(ctx, rows)
	require.NoError(t, err)
	require.Equal(t, 3, applied)

	items, err := repo.List(ctx, player.ListFilter{Name: "overflow", Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Zero(t, items[0].Minutes)
	require.Nil(t, items[0].Age)

	total, err := repo.Count(ctx, player.ListFilter{Team: "arsenal"})
	require.NoError(t, err)
	require.Equal(t, 3, total)
}
