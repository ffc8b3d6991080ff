package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/player"
)

func TestPlayerRepository_TxCommitAndRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository()
	at := time.Date(2025, 8, 16, 9, 0, 0, 0, time.UTC)

	err := repo.WithinTx(ctx, func(ctx context.Context, tx player.Tx) error {
		if _, err := tx.Insert(ctx, player.Stats{Name: "Bukayo Saka", Team: "Arsenal", Goals: 12}, at); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, player.Stats{Name: "Cole Palmer", Team: "Chelsea", Goals: 15}, at)
		return err
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	boom := errors.New("boom")
	err = repo.WithinTx(ctx, func(ctx context.Context, tx player.Tx) error {
		existing, found, err := tx.FindByName(ctx, "Bukayo Saka")
		if err != nil || !found {
			t.Fatalf("find inside tx: found=%v err=%v", found, err)
		}
		if err := tx.Update(ctx, existing.ID, player.Stats{Name: "Bukayo Saka", Team: "Arsenal", Goals: 99}, at.Add(time.Hour)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	got, found, err := repo.GetByID(ctx, 1)
	if err != nil || !found {
		t.Fatalf("get by id: found=%v err=%v", found, err)
	}
	if got.Goals != 12 || !got.LastUpdated.Equal(at) {
		t.Fatalf("rolled back update leaked: %+v", got)
	}
}

func TestPlayerRepository_ListFiltersAndPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository(
		player.Player{ID: 1, Stats: player.Stats{Name: "Erling Haaland", Team: "Manchester City", Nationality: "Norway"}},
		player.Player{ID: 2, Stats: player.Stats{Name: "Phil Foden", Team: "Manchester City", Nationality: "England"}},
		player.Player{ID: 3, Stats: player.Stats{Name: "Bruno Fernandes", Team: "Manchester United", Nationality: "Portugal"}},
		player.Player{ID: 4, Stats: player.Stats{Name: "Martin Odegaard", Team: "Arsenal", Nationality: "Norway"}},
	)

	count, err := repo.Count(ctx, player.ListFilter{Team: "manchester"})
	if err != nil || count != 3 {
		t.Fatalf("count manchester: count=%d err=%v", count, err)
	}

	items, err := repo.List(ctx, player.ListFilter{Team: "MANCHESTER", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != 2 || items[1].ID != 3 {
		t.Fatalf("unexpected page: %+v", items)
	}

	items, err = repo.List(ctx, player.ListFilter{Nationality: "norway", Name: "ode"})
	if err != nil || len(items) != 1 || items[0].ID != 4 {
		t.Fatalf("combined filters: items=%+v err=%v", items, err)
	}

	items, err = repo.List(ctx, player.ListFilter{Offset: 10})
	if err != nil || len(items) != 0 {
		t.Fatalf("offset past end: items=%+v err=%v", items, err)
	}
}

func TestPlayerRepository_InsertAfterSeedUsesNextID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository(player.Player{ID: 7, Stats: player.Stats{Name: "A", Team: "X"}})

	var id int64
	err := repo.WithinTx(ctx, func(ctx context.Context, tx player.Tx) error {
		var err error
		id, err = tx.Insert(ctx, player.Stats{Name: "B", Team: "Y"}, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != 8 {
		t.Fatalf("expected id 8, got %d", id)
	}

	err = repo.WithinTx(ctx, func(ctx context.Context, tx player.Tx) error {
		_, err := tx.Insert(ctx, player.Stats{Name: "A", Team: "Z"}, time.Now())
		return err
	})
	if err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
