package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"

	"ride-registration-bot/filter"
)

const botID = int64(99)

func message(text string) *tele.Message {
	return &tele.Message{Text: text, Sender: &tele.User{ID: 1}}
}

func TestHashtagModeMatchesCaseInsensitive(t *testing.T) {
	f := filter.New(filter.ModeHashtag, []string{"#ride"}, botID)
	assert.True(t, f.ShouldProcess(message("Join our #RIDE tomorrow")))
	assert.True(t, f.ShouldProcess(message("#ride at dawn")))
}

func TestHashtagModeRequiresExactToken(t *testing.T) {
	f := filter.New(filter.ModeHashtag, []string{"#ride"}, botID)
	assert.False(t, f.ShouldProcess(message("#riders welcome")))
	assert.False(t, f.ShouldProcess(message("no hashtags here")))
	assert.False(t, f.ShouldProcess(message("ride without a hash")))
}

func TestHashtagModeChecksCaption(t *testing.T) {
	f := filter.New(filter.ModeHashtag, []string{"#ride"}, botID)
	m := &tele.Message{Caption: "Album of the last #ride", Sender: &tele.User{ID: 1}}
	assert.True(t, f.ShouldProcess(m))
}

func TestHashtagsAreNormalized(t *testing.T) {
	// Tags may be configured without the leading hash and in any case.
	f := filter.New(filter.ModeHashtag, []string{" Ride ", "#GRAVEL"}, botID)
	assert.True(t, f.ShouldProcess(message("sunday #ride")))
	assert.True(t, f.ShouldProcess(message("sunday #gravel")))
}

func TestAllModeAcceptsAnything(t *testing.T) {
	f := filter.New(filter.ModeAll, nil, botID)
	assert.True(t, f.ShouldProcess(message("anything goes")))
}

func TestBotMessagesAreRejected(t *testing.T) {
	for _, mode := range []filter.Mode{filter.ModeAll, filter.ModeHashtag} {
		f := filter.New(mode, []string{"#ride"}, botID)
		assert.False(t, f.ShouldProcess(&tele.Message{
			Text:   "#ride",
			Sender: &tele.User{ID: 2, IsBot: true},
		}))
		assert.False(t, f.ShouldProcess(&tele.Message{
			Text:   "#ride",
			Sender: &tele.User{ID: botID},
		}))
		assert.False(t, f.ShouldProcess(&tele.Message{
			Text:   "#ride",
			Sender: &tele.User{ID: 2},
			Via:    &tele.User{ID: 3, IsBot: true},
		}))
	}
}

func TestHashtagExtraction(t *testing.T) {
	tags := filter.Hashtags("ranked #ride, #Gravel_2024 and #riders!")
	assert.Equal(t, []string{"#ride", "#Gravel_2024", "#riders"}, tags)
}

func TestParseMode(t *testing.T) {
	mode, err := filter.ParseMode("hashtag")
	assert.NoError(t, err)
	assert.Equal(t, filter.ModeHashtag, mode)

	_, err = filter.ParseMode("everything")
	assert.Error(t, err)
}
