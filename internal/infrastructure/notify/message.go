package notify

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/news"
	"github.com/valyala/bytebufferpool"
)

// RenderMessage formats the announcement line posted with an event.
func RenderMessage(ev news.Event) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	name := strings.TrimSpace(ev.PlayerName)
	if name == "" {
		name = ev.PlayerID
	}
	score := strconv.Itoa(ev.HomeScore) + "-" + strconv.Itoa(ev.AwayScore)

	switch ev.Kind {
	case news.KindHatTrick:
		_, _ = buf.WriteString("Hat trick! ")
		_, _ = buf.WriteString(name)
		_, _ = buf.WriteString(" scored ")
		_, _ = buf.WriteString(strconv.Itoa(int(ev.Value)))
	case news.KindAssistHatTrick:
		_, _ = buf.WriteString("Playmaker show: ")
		_, _ = buf.WriteString(name)
		_, _ = buf.WriteString(" set up ")
		_, _ = buf.WriteString(strconv.Itoa(int(ev.Value)))
	case news.KindTopRating:
		_, _ = buf.WriteString("Man of the hour: ")
		_, _ = buf.WriteString(name)
		_, _ = buf.WriteString(" rated ")
		_, _ = buf.WriteString(strconv.FormatFloat(ev.Value, 'f', 1, 64))
	case news.KindThrashing:
		_, _ = buf.WriteString("Thrashing! ")
		_, _ = buf.WriteString(ev.ClubID)
		_, _ = buf.WriteString(" won by ")
		_, _ = buf.WriteString(strconv.Itoa(int(ev.Value)))
	default:
		_, _ = buf.WriteString(string(ev.Kind))
	}
	_, _ = buf.WriteString(" (")
	_, _ = buf.WriteString(score)
	_, _ = buf.WriteString(", fixture ")
	_, _ = buf.WriteString(ev.FixtureID)
	_ = buf.WriteByte(')')
	return buf.String()
}
