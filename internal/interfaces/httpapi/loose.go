package httpapi

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// LooseInt accepts a JSON number or a numeric string. Fractions are truncated.
// Anything unparsable, NaN or infinite decodes as unset so one malformed stat row never rejects a report.
type LooseInt struct {
	Value int
	Set   bool
}

func (v *LooseInt) UnmarshalJSON(data []byte) error {
	f, ok, err := parseLooseNumber(data)
	if err != nil || !ok {
		*v = LooseInt{}
		return nil
	}
	*v = LooseInt{Value: truncInt(f), Set: true}
	return nil
}

func (v LooseInt) Ptr() *int {
	if !v.Set {
		return nil
	}
	out := v.Value
	return &out
}

// ScoreInt decodes like LooseInt but rejects unparsable input; a score is never guessed.
type ScoreInt struct {
	LooseInt
}

func (v *ScoreInt) UnmarshalJSON(data []byte) error {
	f, ok, err := parseLooseNumber(data)
	if err != nil {
		return err
	}
	if !ok {
		*v = ScoreInt{}
		return nil
	}
	*v = ScoreInt{LooseInt{Value: truncInt(f), Set: true}}
	return nil
}

// LooseFloat accepts a JSON number or a numeric string. Invalid input decodes as unset.
type LooseFloat struct {
	Value float64
	Set   bool
}

func (v *LooseFloat) UnmarshalJSON(data []byte) error {
	f, ok, err := parseLooseNumber(data)
	if err != nil || !ok {
		*v = LooseFloat{}
		return nil
	}
	*v = LooseFloat{Value: f, Set: true}
	return nil
}

func (v LooseFloat) Ptr() *float64 {
	if !v.Set {
		return nil
	}
	out := v.Value
	return &out
}

func parseLooseNumber(data []byte) (float64, bool, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}
	text := strings.TrimSpace(strings.Trim(string(raw), `"`))
	if text == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("invalid number %s", raw)
	}
	return f, true, nil
}

func truncInt(f float64) int {
	f = math.Trunc(f)
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// Timestamp accepts RFC3339 text or unix milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if raw[0] == '"' {
		text := strings.TrimSpace(strings.Trim(string(raw), `"`))
		if ms, err := strconv.ParseInt(text, 10, 64); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s", raw)
		}
		t.Time = parsed.UTC()
		return nil
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", raw)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}
