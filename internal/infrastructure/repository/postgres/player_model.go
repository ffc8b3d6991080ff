package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/football-stats/internal/domain/player"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

const playersTable = "players"

// playerTableModel mirrors the players table. Readonly columns are selected
// but never written by the query builder.
type playerTableModel struct {
	ID          int64               `db:"id,readonly"`
	Name        string              `db:"name"`
	Team        sql.NullString      `db:"team"`
	Nationality sql.NullString      `db:"nationality"`
	Position    sql.NullString      `db:"position"`
	Age         sql.NullInt32       `db:"age"`
	Games       int                 `db:"games"`
	Minutes     int                 `db:"minutes"`
	Goals       int                 `db:"goals"`
	Assists     int                 `db:"assists"`
	Shots       int                 `db:"shots"`
	KeyPasses   int                 `db:"key_passes"`
	YellowCards int                 `db:"yellow_cards"`
	RedCards    int                 `db:"red_cards"`
	XG          decimal.NullDecimal `db:"xg"`
	XA          decimal.NullDecimal `db:"xa"`
	CreatedAt   time.Time           `db:"created_at,readonly"`
	LastUpdated time.Time           `db:"last_updated"`
}

var playerSelectColumns = qb.Columns(playerTableModel{})

func playerModelFromStats(row player.Stats, at time.Time) playerTableModel {
	model := playerTableModel{
		Name:        row.Name,
		Team:        nullableString(row.Team),
		Nationality: nullableString(row.Nationality),
		Position:    nullableString(row.Position),
		Games:       row.Games,
		Minutes:     row.Minutes,
		Goals:       row.Goals,
		Assists:     row.Assists,
		Shots:       row.Shots,
		KeyPasses:   row.KeyPasses,
		YellowCards: row.YellowCards,
		RedCards:    row.RedCards,
		XG:          row.ExpectedGoals,
		XA:          row.ExpectedAssists,
		LastUpdated: at,
	}
	if row.Age != nil {
		model.Age = sql.NullInt32{Int32: int32(*row.Age), Valid: true}
	}
	return model
}

func (m playerTableModel) toDomain() player.Player {
	out := player.Player{
		ID: m.ID,
		Stats: player.Stats{
			Name:            m.Name,
			Team:            m.Team.String,
			Nationality:     m.Nationality.String,
			Position:        m.Position.String,
			Games:           m.Games,
			Minutes:         m.Minutes,
			Goals:           m.Goals,
			Assists:         m.Assists,
			Shots:           m.Shots,
			KeyPasses:       m.KeyPasses,
			YellowCards:     m.YellowCards,
			RedCards:        m.RedCards,
			ExpectedGoals:   m.XG,
			ExpectedAssists: m.XA,
		},
		CreatedAt:   m.CreatedAt,
		LastUpdated: m.LastUpdated,
	}
	if m.Age.Valid {
		out.Age = player.IntPtr(int(m.Age.Int32))
	}
	return out
}
