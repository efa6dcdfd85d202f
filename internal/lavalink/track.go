package lavalink

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Track is a playable item as known to the player.
type Track struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	URI       string        `json:"uri"`
	Source    string        `json:"source"`
	Duration  time.Duration `json:"duration"`
	Requester string        `json:"requester"`
}

// DisplayName renders "Title - Author" cut to maxLength runes, optionally as
// a markdown link to the track URI. maxLength <= 0 disables truncation.
func (t Track) DisplayName(maxLength int, withURL bool) string {
	name := t.Title
	if name == "" {
		name = t.URI
	}
	if t.Author != "" && !strings.Contains(name, t.Author) {
		name = fmt.Sprintf("%s - %s", name, t.Author)
	}
	name = truncate(name, maxLength)
	if withURL && t.URI != "" {
		return fmt.Sprintf("[%s](%s)", escapeBrackets(name), t.URI)
	}
	return name
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func escapeBrackets(s string) string {
	return strings.NewReplacer("[", "\\[", "]", "\\]").Replace(s)
}

// FormatDuration renders d as h:mm:ss or m:ss.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
