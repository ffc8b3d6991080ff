package understat

import (
	"bytes"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/football-stats/internal/domain/player"
)

var leagueCodes = map[string]string{
	"epl":        "EPL",
	"la_liga":    "La_liga",
	"bundesliga": "Bundesliga",
	"serie_a":    "Serie_A",
	"ligue_1":    "Ligue_1",
	"rfpl":       "RFPL",
}

// LeagueCode maps a league identifier to understat's path segment. Matching
// ignores case and treats '-' and ' ' like '_', so "EPL", "La-Liga" and
// "serie a" all resolve.
func LeagueCode(league string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(league))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	code, ok := leagueCodes[key]
	return code, ok
}

// Leagues lists the supported league identifiers.
func Leagues() []string {
	return []string{"epl", "la_liga", "bundesliga", "serie_a", "ligue_1", "rfpl"}
}

var numberAPI = sonic.Config{UseNumber: true}.Froze()

// leagueDataEnvelope is the getLeagueData response; only players is consumed.
type leagueDataEnvelope struct {
	Players []map[string]any `json:"players"`
}

// decodePlayers accepts the full league envelope or a bare player array.
func decodePlayers(raw []byte) ([]player.RawRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []player.RawRecord{}, nil
	}

	var items []map[string]any
	switch trimmed[0] {
	case '[':
		if err := numberAPI.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
	case '{':
		var envelope leagueDataEnvelope
		if err := numberAPI.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		items = envelope.Players
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}

	// A null entry stays in the batch as an empty record so the normalizer
	// rejects it and every payload entry is either normalized or rejected.
	out := make([]player.RawRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			out = append(out, player.RawRecord{})
			continue
		}
		out = append(out, player.RecordOf(item))
	}
	return out, nil
}
