package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"ride-registration-bot/filter"
	"ride-registration-bot/posts"
)

// Config is built once at startup and passed into constructors. Nothing
// reads the environment after FromEnv returns.
type Config struct {
	BotToken          string
	RidesChannelID    int64
	DiscussionGroupID int64
	RegistrationMode  posts.Mode
	RideFilter        filter.Mode
	RideHashtags      []string
	AdminUserIDs      map[int64]bool

	DatabasePath string
	RedisAddress string
	HTTPAddress  string

	VoteCooldown         time.Duration
	ShowChangedMindStats bool
	Buttons              Buttons
	Language             string
	Texts                map[string]string
	Debug                bool
}

func (c Config) IsAdmin(userID int64) bool {
	return c.AdminUserIDs[userID]
}

// FromEnv loads configuration from the environment, reading .env first if
// one is present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.BotToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if c.BotToken == "" {
		return c, errors.New("BOT_TOKEN is required")
	}

	var err error
	c.RidesChannelID, err = parseID(os.Getenv("RIDES_CHANNEL_ID"))
	if err != nil {
		return c, errors.Wrap(err, "invalid RIDES_CHANNEL_ID")
	}
	if c.RidesChannelID == 0 {
		return c, errors.New("RIDES_CHANNEL_ID is required")
	}
	c.DiscussionGroupID, err = parseID(os.Getenv("DISCUSSION_GROUP_ID"))
	if err != nil {
		return c, errors.Wrap(err, "invalid DISCUSSION_GROUP_ID")
	}

	c.RegistrationMode, err = posts.ParseMode(getenv("REGISTRATION_MODE", string(posts.ModeEditChannel)))
	if err != nil {
		return c, errors.Wrap(err, "invalid REGISTRATION_MODE")
	}
	c.RideFilter, err = filter.ParseMode(getenv("RIDE_FILTER", string(filter.ModeHashtag)))
	if err != nil {
		return c, errors.Wrap(err, "invalid RIDE_FILTER")
	}
	c.RideHashtags = splitCSV(getenv("RIDE_HASHTAGS", "#ride"))
	c.AdminUserIDs, err = parseAdminIDs(os.Getenv("ADMIN_USER_IDS"))
	if err != nil {
		return c, errors.Wrap(err, "invalid ADMIN_USER_IDS")
	}

	c.DatabasePath = getenv("DATABASE_PATH", "./data/bot.db")
	c.RedisAddress = strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	c.HTTPAddress = getenv("HTTP_ADDRESS", ":8080")

	cooldown, err := strconv.Atoi(getenv("VOTE_COOLDOWN", "1"))
	if err != nil {
		return c, errors.Wrap(err, "invalid VOTE_COOLDOWN")
	}
	if cooldown < 0 {
		return c, errors.New("VOTE_COOLDOWN must be non-negative")
	}
	c.VoteCooldown = time.Duration(cooldown) * time.Second

	c.ShowChangedMindStats = getenv("SHOW_CHANGED_MIND_STATS", "true") == "true"
	c.Debug = os.Getenv("DEBUG") == "true"

	c.Buttons, err = LoadButtons(getenv("BUTTONS_FILE", "config/buttons.yaml"))
	if err != nil {
		return c, errors.Wrap(err, "invalid button config")
	}
	c.Language = getenv("LANGUAGE", defaultLanguage)
	c.Texts, err = LoadTexts(getenv("TRANSLATIONS_FILE", "config/translations.yaml"), c.Language)
	if err != nil {
		return c, errors.Wrap(err, "invalid translations")
	}
	return c, nil
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func splitCSV(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}

func parseAdminIDs(raw string) (map[int64]bool, error) {
	ids := map[int64]bool{}
	for _, part := range splitCSV(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad admin id %q", part)
		}
		ids[id] = true
	}
	return ids, nil
}
