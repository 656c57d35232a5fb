package filter

import (
	"log"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"
)

// Mode selects which channel messages become tracked announcements.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeHashtag Mode = "hashtag"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeHashtag:
		return Mode(s), nil
	}
	return "", errors.Errorf("unknown ride filter: %v", s)
}

var hashtagPattern = regexp.MustCompile(`#[\pL\pN_]+`)

// Filter is the stateless predicate deciding whether a channel message is a
// trackable ride announcement.
type Filter struct {
	mode     Mode
	hashtags []string
	botID    int64
}

// New builds a filter. Hashtags are matched case-insensitively as whole
// tokens; botID is this bot's own id, its messages are never processed.
func New(mode Mode, hashtags []string, botID int64) *Filter {
	normalized := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		normalized = append(normalized, tag)
	}
	return &Filter{mode: mode, hashtags: normalized, botID: botID}
}

func (f *Filter) ShouldProcess(m *tele.Message) bool {
	if m == nil {
		return false
	}
	// Never react to bot-originated messages, including the cards this bot
	// edits into its own channel.
	if m.Sender != nil && (m.Sender.IsBot || m.Sender.ID == f.botID) {
		return false
	}
	if m.Via != nil {
		return false
	}
	switch f.mode {
	case ModeAll:
		return true
	case ModeHashtag:
		return f.hasRideTag(messageText(m))
	}
	log.Printf("unknown ride filter: %v", f.mode)
	return false
}

func (f *Filter) hasRideTag(text string) bool {
	for _, tag := range Hashtags(text) {
		for _, want := range f.hashtags {
			if strings.ToLower(tag) == want {
				return true
			}
		}
	}
	return false
}

// Hashtags extracts #-tokens from text. "#riders" is one token, it does not
// contain "#ride".
func Hashtags(text string) []string {
	return hashtagPattern.FindAllString(text, -1)
}

func messageText(m *tele.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
