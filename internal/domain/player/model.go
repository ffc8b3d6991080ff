package player

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stats is one normalized player row as produced from an upstream record.
// It carries no identity and no timestamps; the store assigns those.
type Stats struct {
	Name        string
	Team        string
	Nationality string
	Position    string
	Age         *int

	Games       int
	Minutes     int
	Goals       int
	Assists     int
	Shots       int
	KeyPasses   int
	YellowCards int
	RedCards    int

	// Exact decimal text from the provider, never routed through float64.
	ExpectedGoals   decimal.NullDecimal
	ExpectedAssists decimal.NullDecimal
}

// Player is a stored row. Name is the natural key; ID never changes once assigned.
type Player struct {
	ID int64
	Stats
	CreatedAt   time.Time
	LastUpdated time.Time
}

// MaxCount is the largest value an INTEGER column holds.
const MaxCount = math.MaxInt32

// Validate checks the structural shape a row must have before it may be written.
func (s Stats) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if strings.TrimSpace(s.Team) == "" {
		return fmt.Errorf("player team is required")
	}
	if s.Age != nil && (*s.Age < 0 || *s.Age > MaxCount) {
		return fmt.Errorf("player age must be within [0, %d]", MaxCount)
	}

	counters := map[string]int{
		FieldGames:       s.Games,
		FieldMinutes:     s.Minutes,
		FieldGoals:       s.Goals,
		FieldAssists:     s.Assists,
		FieldShots:       s.Shots,
		FieldKeyPasses:   s.KeyPasses,
		FieldYellowCards: s.YellowCards,
		FieldRedCards:    s.RedCards,
	}
	for field, value := range counters {
		if value < 0 || value > MaxCount {
			return fmt.Errorf("player %s must be within [0, %d]", field, MaxCount)
		}
	}
	return nil
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
