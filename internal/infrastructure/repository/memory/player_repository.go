package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/player"
)

// PlayerRepository keeps players in process memory. Transactions work on a
// private copy that replaces the live table only when fn succeeds, so readers
// see either the old or the new table, never a mix.
type PlayerRepository struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	table   playerTable
	counter int64
}

type playerTable struct {
	rows   map[int64]player.Player
	byName map[string]int64
}

func NewPlayerRepository(seed ...player.Player) *PlayerRepository {
	r := &PlayerRepository{table: playerTable{
		rows:   make(map[int64]player.Player, len(seed)),
		byName: make(map[string]int64, len(seed)),
	}}
	for _, p := range seed {
		if p.ID > r.counter {
			r.counter = p.ID
		}
		r.table.rows[p.ID] = p
		r.table.byName[p.Name] = p.ID
	}
	return r
}

func (r *PlayerRepository) List(_ context.Context, filter player.ListFilter) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.table.match(filter)
	if filter.Offset >= len(matched) {
		return []player.Player{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *PlayerRepository) Count(_ context.Context, filter player.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.table.match(filter)), nil
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.table.rows[id]
	return p, ok, nil
}

func (r *PlayerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx player.Tx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	tx := &playerTx{table: r.table.clone(), counter: r.counter}
	r.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	r.table = tx.table
	r.counter = tx.counter
	r.mu.Unlock()
	return nil
}

type playerTx struct {
	table   playerTable
	counter int64
}

func (t *playerTx) FindByName(_ context.Context, name string) (player.Player, bool, error) {
	id, ok := t.table.byName[name]
	if !ok {
		return player.Player{}, false, nil
	}
	return t.table.rows[id], true, nil
}

func (t *playerTx) Insert(_ context.Context, row player.Stats, at time.Time) (int64, error) {
	if _, exists := t.table.byName[row.Name]; exists {
		return 0, fmt.Errorf("player name=%q already exists", row.Name)
	}
	t.counter++
	t.table.rows[t.counter] = player.Player{
		ID:          t.counter,
		Stats:       row,
		CreatedAt:   at,
		LastUpdated: at,
	}
	t.table.byName[row.Name] = t.counter
	return t.counter, nil
}

func (t *playerTx) Update(_ context.Context, id int64, row player.Stats, at time.Time) error {
	current, ok := t.table.rows[id]
	if !ok {
		return fmt.Errorf("player id=%d not found", id)
	}
	if current.Name != row.Name {
		if _, taken := t.table.byName[row.Name]; taken {
			return fmt.Errorf("player name=%q already exists", row.Name)
		}
		delete(t.table.byName, current.Name)
		t.table.byName[row.Name] = id
	}
	current.Stats = row
	current.LastUpdated = at
	t.table.rows[id] = current
	return nil
}

func (t playerTable) clone() playerTable {
	out := playerTable{
		rows:   make(map[int64]player.Player, len(t.rows)),
		byName: make(map[string]int64, len(t.byName)),
	}
	for id, p := range t.rows {
		out.rows[id] = p
	}
	for name, id := range t.byName {
		out.byName[name] = id
	}
	return out
}

func (t playerTable) match(filter player.ListFilter) []player.Player {
	out := make([]player.Player, 0, len(t.rows))
	for _, p := range t.rows {
		if containsFold(p.Name, filter.Name) &&
			containsFold(p.Team, filter.Team) &&
			containsFold(p.Nationality, filter.Nationality) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsFold(value, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}
