package statsprovider

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

type recentMatchesEnvelope struct {
	Data []matchItem `json:"data"`
}

type matchItem struct {
	ID       string   `json:"id"`
	State    string   `json:"state"`
	PlayedAt string   `json:"played_at"`
	Home     sideItem `json:"home"`
	Away     sideItem `json:"away"`
}

type sideItem struct {
	ClubRef string       `json:"club_ref"`
	Score   flexNumber   `json:"score"`
	Players []playerItem `json:"players"`
}

type playerItem struct {
	Ref     string     `json:"ref"`
	Name    string     `json:"name"`
	Goals   flexNumber `json:"goals"`
	Assists flexNumber `json:"assists"`
	Rating  flexNumber `json:"rating"`
}

// flexNumber accepts numbers, numeric strings and null. Anything else decodes to zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := sonic.Unmarshal(data, &text); err != nil {
			*n = 0
			return nil
		}
		raw = strings.TrimSpace(text)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(value)
	return nil
}

func (n flexNumber) Int() int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func (n flexNumber) Float() float64 {
	if n < 0 {
		return 0
	}
	return float64(n)
}

func (m matchItem) finished() bool {
	switch strings.ToLower(strings.TrimSpace(m.State)) {
	case "", "finished", "ft", "aet", "pen":
		return true
	default:
		return false
	}
}

func parsePlayedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
