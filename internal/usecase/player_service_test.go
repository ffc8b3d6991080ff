package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/football-stats/internal/mocks/domain/player"
)

func seedPlayers(t *testing.T, n int) *memory.PlayerRepository {
	t.Helper()

	faker := gofakeit.New(42)
	seed := make([]player.Player, 0, n)
	for i := 1; i <= n; i++ {
		seed = append(seed, player.Player{
			ID: int64(i),
			Stats: player.Stats{
				Name:        fmt.Sprintf("%s %d", faker.Name(), i),
				Team:        faker.City() + " FC",
				Nationality: faker.Country(),
				Goals:       faker.IntRange(0, 30),
			},
		})
	}
	return memory.NewPlayerRepository(seed...)
}

func TestPlayerService_ListPlayersPaginates(t *testing.T) {
	t.Parallel()

	service := NewPlayerService(seedPlayers(t, 25), PlayerQueryConfig{DefaultPerPage: 10, MaxPerPage: 100})

	page, err := service.ListPlayers(context.Background(), ListPlayersInput{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if page.TotalItems != 25 || page.TotalPages != 3 || len(page.Items) != 10 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.TotalItems, page.TotalPages, len(page.Items))
	}

	last, err := service.ListPlayers(context.Background(), ListPlayersInput{Page: 3, PerPage: 10})
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last.Items) != 5 || last.Items[0].ID != 21 {
		t.Fatalf("unexpected last page: %+v", last.Items)
	}

	beyond, err := service.ListPlayers(context.Background(), ListPlayersInput{Page: 9, PerPage: 10})
	if err != nil {
		t.Fatalf("list beyond last page: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.TotalPages != 3 || beyond.Page != 9 {
		t.Fatalf("unexpected page beyond range: %+v", beyond)
	}
}

func TestPlayerService_ListPlayersClampsPage(t *testing.T) {
	t.Parallel()

	service := NewPlayerService(seedPlayers(t, 3), PlayerQueryConfig{DefaultPerPage: 10, MaxPerPage: 100})

	for _, p := range []int{0, -4} {
		page, err := service.ListPlayers(context.Background(), ListPlayersInput{Page: p, PerPage: 2})
		if err != nil {
			t.Fatalf("page=%d: %v", p, err)
		}
		if page.Page != 1 || len(page.Items) != 2 || page.Items[0].ID != 1 {
			t.Fatalf("page=%d: expected clamp to first page, got %+v", p, page)
		}
	}
}

func TestPlayerService_ListPlayersRejectsPerPageOutOfRange(t *testing.T) {
	t.Parallel()

	repo := playermock.NewReader(t)
	service := NewPlayerService(repo, PlayerQueryConfig{DefaultPerPage: 10, MaxPerPage: 100})

	for _, perPage := range []int{0, -1, 101, 1000} {
		_, err := service.ListPlayers(context.Background(), ListPlayersInput{Page: 1, PerPage: perPage})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("per_page=%d: expected ErrInvalidInput, got %v", perPage, err)
		}
	}
	repo.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
}

func TestPlayerService_ListPlayersTrimsFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := playermock.NewReader(t)
	want := player.ListFilter{Name: "saka", Team: "arsenal"}
	repo.On("Count", mock.Anything, want).Return(1, nil).Once()
	repo.On("List", mock.Anything, player.ListFilter{Name: "saka", Team: "arsenal", Limit: 10}).
		Return([]player.Player{{ID: 7, Stats: player.Stats{Name: "Bukayo Saka", Team: "Arsenal"}}}, nil).
		Once()

	service := NewPlayerService(repo, PlayerQueryConfig{})
	page, err := service.ListPlayers(ctx, ListPlayersInput{Name: " saka ", Team: "arsenal\t", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != 7 {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
}

func TestPlayerService_ListPlayersWrapsRepositoryError(t *testing.T) {
	t.Parallel()

	repo := playermock.NewReader(t)
	boom := errors.New("pq: connection refused")
	repo.On("Count", mock.Anything, mock.Anything).Return(0, boom).Once()

	_, err := NewPlayerService(repo, PlayerQueryConfig{}).ListPlayers(context.Background(), ListPlayersInput{PerPage: 10})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) {
		t.Fatalf("repository error must not map to a client error: %v", err)
	}
}

func TestPlayerService_GetPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := playermock.NewReader(t)
	repo.On("GetByID", mock.Anything, int64(7)).
		Return(player.Player{ID: 7, Stats: player.Stats{Name: "Bukayo Saka"}}, true, nil).
		Once()
	repo.On("GetByID", mock.Anything, int64(404)).
		Return(player.Player{}, false, nil).
		Once()

	service := NewPlayerService(repo, PlayerQueryConfig{})

	got, err := service.GetPlayer(ctx, 7)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != "Bukayo Saka" {
		t.Fatalf("unexpected player: %+v", got)
	}

	if _, err := service.GetPlayer(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewPlayerServiceDefaults(t *testing.T) {
	t.Parallel()

	service := NewPlayerService(nil, PlayerQueryConfig{DefaultPerPage: 500, MaxPerPage: 50})
	if service.MaxPerPage() != 50 || service.DefaultPerPage() != 10 {
		t.Fatalf("unexpected defaults: max=%d default=%d", service.MaxPerPage(), service.DefaultPerPage())
	}
}
