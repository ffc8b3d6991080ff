package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidFieldValue    = errors.New("invalid field value")
)

// Field names used in rejections and validation messages.
const (
	FieldName            = "name"
	FieldTeam            = "team"
	FieldNationality     = "nationality"
	FieldPosition        = "position"
	FieldAge             = "age"
	FieldGames           = "games"
	FieldMinutes         = "minutes"
	FieldGoals           = "goals"
	FieldAssists         = "assists"
	FieldShots           = "shots"
	FieldKeyPasses       = "key_passes"
	FieldYellowCards     = "yellow_cards"
	FieldRedCards        = "red_cards"
	FieldExpectedGoals   = "xg"
	FieldExpectedAssists = "xa"
)

// Upstream keys per field, first match wins.
var fieldKeys = map[string][]string{
	FieldName:            {"player_name", "name"},
	FieldTeam:            {"team_title", "team", "club"},
	FieldNationality:     {"nationality"},
	FieldPosition:        {"position"},
	FieldAge:             {"age"},
	FieldGames:           {"games", "appearances"},
	FieldMinutes:         {"time", "minutes"},
	FieldGoals:           {"goals"},
	FieldAssists:         {"assists"},
	FieldShots:           {"shots"},
	FieldKeyPasses:       {"key_passes"},
	FieldYellowCards:     {"yellow_cards"},
	FieldRedCards:        {"red_cards"},
	FieldExpectedGoals:   {"xG", "xg"},
	FieldExpectedAssists: {"xA", "xa"},
}

// CoercionMode decides what happens to a malformed optional value.
//
// Lenient (the default) substitutes zero for counters and null for age and
// the decimal metrics. Strict rejects the whole record with ErrInvalidFieldValue.
type CoercionMode string

const (
	CoercionLenient CoercionMode = "lenient"
	CoercionStrict  CoercionMode = "strict"
)

func ParseCoercionMode(raw string) (CoercionMode, error) {
	switch CoercionMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CoercionLenient:
		return CoercionLenient, nil
	case CoercionStrict:
		return CoercionStrict, nil
	default:
		return "", fmt.Errorf("unknown coercion mode %q (want lenient or strict)", raw)
	}
}

// FieldError explains why a record was rejected.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	}
	return fmt.Sprintf("%s: %s=%q", e.Err, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Rejection is a dropped record, reported to the caller for logging.
type Rejection struct {
	Index int
	Name  string
	Err   *FieldError
}

func (r Rejection) Reason() string {
	if errors.Is(r.Err, ErrMissingRequiredField) {
		return "MissingRequiredField"
	}
	return "InvalidFieldValue"
}

// Normalizer turns raw upstream records into Stats. It holds no state besides
// the coercion mode and is safe for concurrent use.
type Normalizer struct {
	mode CoercionMode
}

func NewNormalizer(mode CoercionMode) Normalizer {
	if mode != CoercionStrict {
		mode = CoercionLenient
	}
	return Normalizer{mode: mode}
}

func (n Normalizer) Mode() CoercionMode {
	return n.mode
}

// NormalizeBatch keeps the input order of accepted rows.
func (n Normalizer) NormalizeBatch(records []RawRecord) ([]Stats, []Rejection) {
	rows := make([]Stats, 0, len(records))
	var rejections []Rejection
	for i, rec := range records {
		row, err := n.Normalize(rec)
		if err != nil {
			name, _ := rec.text(FieldName)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				fieldErr = &FieldError{Err: err}
			}
			rejections = append(rejections, Rejection{Index: i, Name: name, Err: fieldErr})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rejections
}

func (n Normalizer) Normalize(rec RawRecord) (Stats, error) {
	name, ok := rec.text(FieldName)
	if !ok {
		return Stats{}, &FieldError{Field: FieldName, Err: ErrMissingRequiredField}
	}
	team, ok := rec.text(FieldTeam)
	if !ok {
		return Stats{}, &FieldError{Field: FieldTeam, Err: ErrMissingRequiredField}
	}

	out := Stats{Name: name, Team: team}
	out.Nationality, _ = rec.text(FieldNationality)
	out.Position, _ = rec.text(FieldPosition)

	counters := []struct {
		field string
		dst   *int
	}{
		{FieldGames, &out.Games},
		{FieldMinutes, &out.Minutes},
		{FieldGoals, &out.Goals},
		{FieldAssists, &out.Assists},
		{FieldShots, &out.Shots},
		{FieldKeyPasses, &out.KeyPasses},
		{FieldYellowCards, &out.YellowCards},
		{FieldRedCards, &out.RedCards},
	}
	for _, c := range counters {
		value, present, err := n.count(rec, c.field)
		if err != nil {
			return Stats{}, err
		}
		if present {
			*c.dst = value
		}
	}

	age, present, err := n.count(rec, FieldAge)
	if err != nil {
		return Stats{}, err
	}
	if present {
		out.Age = IntPtr(age)
	}

	if out.ExpectedGoals, err = n.metric(rec, FieldExpectedGoals); err != nil {
		return Stats{}, err
	}
	if out.ExpectedAssists, err = n.metric(rec, FieldExpectedAssists); err != nil {
		return Stats{}, err
	}

	return out, nil
}

// count parses a non-negative integer that fits an INTEGER column. present
// is false when the value is absent, or malformed or out of range under
// lenient coercion; callers keep their zero value.
func (n Normalizer) count(rec RawRecord, field string) (value int, present bool, err error) {
	raw, ok := rec.text(field)
	if !ok {
		return 0, false, nil
	}
	parsed, convErr := strconv.ParseInt(raw, 10, 32)
	if convErr == nil && parsed >= 0 {
		return int(parsed), true, nil
	}
	if n.mode == CoercionStrict {
		return 0, false, &FieldError{Field: field, Value: raw, Err: ErrInvalidFieldValue}
	}
	return 0, false, nil
}

func (n Normalizer) metric(rec RawRecord, field string) (decimal.NullDecimal, error) {
	raw, ok := rec.text(field)
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err == nil && !d.IsNegative() {
		return decimal.NewNullDecimal(d), nil
	}
	if n.mode == CoercionStrict {
		return decimal.NullDecimal{}, &FieldError{Field: field, Value: raw, Err: ErrInvalidFieldValue}
	}
	return decimal.NullDecimal{}, nil
}

func (r RawRecord) text(field string) (string, bool) {
	v, ok := r.lookup(fieldKeys[field]...)
	if !ok {
		return "", false
	}
	return v.Text()
}
