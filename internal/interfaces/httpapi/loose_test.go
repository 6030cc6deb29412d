package httpapi

import (
	"math"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseNumbers(t *testing.T) {
	t.Parallel()

	var payload struct {
		Goals   LooseInt   `json:"goals"`
		Assists LooseInt   `json:"assists"`
		Missing LooseInt   `json:"missing"`
		Rating  LooseFloat `json:"rating"`
		Blank   LooseFloat `json:"blank"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(`{"goals":"2","assists":1.9,"missing":null,"rating":"8.5","blank":""}`), &payload))

	assert.Equal(t, 2, *payload.Goals.Ptr())
	assert.Equal(t, 1, *payload.Assists.Ptr())
	assert.Nil(t, payload.Missing.Ptr())
	assert.Equal(t, 8.5, *payload.Rating.Ptr())
	assert.Nil(t, payload.Blank.Ptr())

	var malformed struct {
		Goals   LooseInt   `json:"goals"`
		Assists LooseInt   `json:"assists"`
		Rating  LooseFloat `json:"rating"`
		Huge    LooseInt   `json:"huge"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(`{"goals":"two","assists":"NaN","rating":"Inf","huge":1e300}`), &malformed))
	assert.Nil(t, malformed.Goals.Ptr())
	assert.Nil(t, malformed.Assists.Ptr())
	assert.Nil(t, malformed.Rating.Ptr())
	assert.Equal(t, math.MaxInt, *malformed.Huge.Ptr())
}

func TestScoreIntRejectsGarbage(t *testing.T) {
	t.Parallel()

	var payload struct {
		Home ScoreInt `json:"homeScore"`
		Away ScoreInt `json:"awayScore"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(`{"homeScore":"3","awayScore":null}`), &payload))
	assert.Equal(t, 3, payload.Home.Value)
	assert.False(t, payload.Away.Set)

	assert.Error(t, sonic.Unmarshal([]byte(`{"homeScore":"three"}`), &payload))
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 4, 4, 18, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		`{"at":"2026-04-04T18:30:00Z"}`,
		`{"at":"2026-04-05T01:30:00+07:00"}`,
		`{"at":1775327400000}`,
		`{"at":"1775327400000"}`,
	} {
		var payload struct {
			At Timestamp `json:"at"`
		}
		require.NoError(t, sonic.Unmarshal([]byte(raw), &payload), raw)
		assert.True(t, payload.At.Equal(want), "%s decoded to %s", raw, payload.At)
	}
}
