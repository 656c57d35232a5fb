package templates

import (
	_ "embed"
	"log"
)

var (
	//go:embed resource/card.txt
	Card string
	//go:embed resource/changedMind.txt
	ChangedMind string
	//go:embed resource/votersTitle.txt
	VotersTitle string
	//go:embed resource/votersGroup.txt
	VotersGroup string
	//go:embed resource/votersEmpty.txt
	VotersEmpty string
	//go:embed resource/votersSummary.txt
	VotersSummary string
	//go:embed resource/voteRecorded.txt
	VoteRecorded string
	//go:embed resource/rateLimited.txt
	RateLimited string
	//go:embed resource/refreshed.txt
	Refreshed string
	//go:embed resource/votersSent.txt
	VotersSent string
	//go:embed resource/voteRequired.txt
	VoteRequired string
	//go:embed resource/adminOnly.txt
	AdminOnly string
	//go:embed resource/pong.txt
	Pong string
	//go:embed resource/votersUsage.txt
	VotersUsage string
	//go:embed resource/unexpectedError.txt
	UnexpectedError string
)

// Default button labels, overridable through the button config file.
var (
	//go:embed resource/buttonJoin.txt
	ButtonJoin string
	//go:embed resource/buttonMaybe.txt
	ButtonMaybe string
	//go:embed resource/buttonDecline.txt
	ButtonDecline string
	//go:embed resource/buttonVoters.txt
	ButtonVoters string
	//go:embed resource/buttonRefresh.txt
	ButtonRefresh string
	//go:embed resource/buttonOriginalPost.txt
	ButtonOriginalPost string
)

// StatusEmoji maps a vote status to the emoji used in cards and toasts.
var StatusEmoji = map[string]string{
	"join":    "✅",
	"maybe":   "❔",
	"decline": "❌",
}

// byKey maps translation file entries to the texts they override.
var byKey = map[string]*string{
	"card":             &Card,
	"changed_mind":     &ChangedMind,
	"voters_title":     &VotersTitle,
	"voters_group":     &VotersGroup,
	"voters_empty":     &VotersEmpty,
	"voters_summary":   &VotersSummary,
	"vote_recorded":    &VoteRecorded,
	"rate_limited":     &RateLimited,
	"refreshed":        &Refreshed,
	"voters_sent":      &VotersSent,
	"vote_required":    &VoteRequired,
	"admin_only":       &AdminOnly,
	"pong":             &Pong,
	"voters_usage":     &VotersUsage,
	"unexpected_error": &UnexpectedError,

	"button_join":          &ButtonJoin,
	"button_maybe":         &ButtonMaybe,
	"button_decline":       &ButtonDecline,
	"button_voters":        &ButtonVoters,
	"button_refresh":       &ButtonRefresh,
	"button_original_post": &ButtonOriginalPost,
}

// Override replaces default texts with configured translations. Unknown
// keys are logged and skipped, empty values keep the default.
func Override(texts map[string]string) {
	for key, text := range texts {
		target, ok := byKey[key]
		if !ok {
			log.Printf("unknown translation key: %v", key)
			continue
		}
		if text == "" {
			continue
		}
		*target = text
	}
}
