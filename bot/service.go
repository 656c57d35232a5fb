package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"

	"ride-registration-bot/config"
	"ride-registration-bot/filter"
	"ride-registration-bot/posts"
	"ride-registration-bot/registration"
	"ride-registration-bot/templates"
	"ride-registration-bot/votes"
)

var (
	votePattern    = regexp.MustCompile(`^v:(join|maybe|decline):(-?\d+):(\d+)$`)
	votersPattern  = regexp.MustCompile(`^voters:(-?\d+):(\d+)$`)
	refreshPattern = regexp.MustCompile(`^refresh:(-?\d+):(\d+)$`)
)

// Service holds the handlers behind every inbound Telegram event.
type Service struct {
	cfg          config.Config
	filter       *filter.Filter
	votes        *votes.Service
	registration *registration.Service
	posts        posts.Store

	// albums guards against creating several registrations for one
	// media group while its messages stream in.
	albums sync.Map
}

func NewService(
	cfg config.Config,
	f *filter.Filter,
	voteService *votes.Service,
	registrationService *registration.Service,
	postStore posts.Store,
) *Service {
	return &Service{
		cfg:          cfg,
		filter:       f,
		votes:        voteService,
		registration: registrationService,
		posts:        postStore,
	}
}

// HandleChannelPost watches the rides channel for new announcements.
func (s *Service) HandleChannelPost(c tele.Context) error {
	m := c.Message()
	if m == nil || m.Chat == nil || m.Chat.ID != s.cfg.RidesChannelID {
		return nil
	}
	if !s.filter.ShouldProcess(m) {
		log.Printf("skipping message %v (filter rules)", m.ID)
		return nil
	}
	if m.AlbumID != "" {
		if _, processing := s.albums.LoadOrStore(m.AlbumID, struct{}{}); processing {
			return nil
		}
		defer s.albums.Delete(m.AlbumID)
	}
	return s.registration.Create(context.Background(), m.Chat.ID, m.ID, m.AlbumID)
}

// HandleDiscussionMessage captures the automatic forwards of channel posts
// into the linked group and completes pending discussion registrations.
func (s *Service) HandleDiscussionMessage(c tele.Context) error {
	m := c.Message()
	if s.cfg.DiscussionGroupID == 0 || m == nil || m.Chat == nil || m.Chat.ID != s.cfg.DiscussionGroupID {
		return nil
	}
	if m.OriginalChat == nil || m.OriginalChat.ID != s.cfg.RidesChannelID || m.OriginalMessageID == 0 {
		return nil
	}
	ctx := context.Background()
	key := posts.Key{ChannelID: s.cfg.RidesChannelID, MessageID: m.OriginalMessageID}
	err := s.posts.SetDiscussionMessage(ctx, key, m.ID)
	if errors.Is(err, posts.ErrNotFound) {
		// A forward for a message the bot never tracked.
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("captured discussion mapping: %v -> discussion message %v", key, m.ID)
	return s.registration.CompleteDiscussion(ctx, key)
}

// ProcessCallback routes button clicks on registration cards.
func (s *Service) ProcessCallback(c tele.Context) error {
	data := c.Callback().Data
	if submatch := votePattern.FindStringSubmatch(data); submatch != nil {
		status, key, err := parseVoteCallback(submatch)
		if err != nil {
			return respond(c, "Invalid callback data", true)
		}
		return s.handleVote(c, key, status)
	}
	if submatch := votersPattern.FindStringSubmatch(data); submatch != nil {
		key, err := parseKeyCallback(submatch)
		if err != nil {
			return respond(c, "Invalid callback data", true)
		}
		return s.handleVoters(c, key)
	}
	if submatch := refreshPattern.FindStringSubmatch(data); submatch != nil {
		key, err := parseKeyCallback(submatch)
		if err != nil {
			return respond(c, "Invalid callback data", true)
		}
		return s.handleRefresh(c, key)
	}
	return errors.Errorf("unknown callback data: %v", data)
}

func (s *Service) handleVote(c tele.Context, key posts.Key, status votes.Status) error {
	ctx := context.Background()
	vote, err := s.votes.Cast(ctx, key, c.Sender().ID, status)
	var rateLimited votes.RateLimitedError
	if errors.As(err, &rateLimited) {
		return respond(c, fmt.Sprintf(templates.RateLimited, rateLimited.RemainingSeconds()), false)
	}
	if err != nil {
		log.Printf("error handling vote for %v: %v", key, err.Error())
		return respond(c, templates.UnexpectedError, true)
	}
	if err := s.registration.Update(ctx, key); err != nil {
		log.Printf("failed to update registration card for %v: %v", key, err.Error())
	}
	return respond(c, fmt.Sprintf(templates.VoteRecorded, templates.StatusEmoji[string(vote.Status)]), false)
}

func (s *Service) handleVoters(c tele.Context, key posts.Key) error {
	ctx := context.Background()
	if s.cfg.Buttons.AccessControl.RequireVoteToSeeVoters {
		voted, err := s.votes.HasVoted(ctx, key, c.Sender().ID)
		if err != nil {
			return err
		}
		if !voted {
			return respond(c, templates.VoteRequired, true)
		}
	}
	if err := s.registration.PublishVoters(ctx, key); err != nil {
		log.Printf("error publishing voters for %v: %v", key, err.Error())
		return respond(c, templates.UnexpectedError, true)
	}
	return respond(c, templates.VotersSent, false)
}

func (s *Service) handleRefresh(c tele.Context, key posts.Key) error {
	if err := s.registration.Update(context.Background(), key); err != nil {
		log.Printf("error refreshing card for %v: %v", key, err.Error())
		return respond(c, templates.UnexpectedError, true)
	}
	return respond(c, templates.Refreshed, false)
}

// HandleVoters is the /voters admin command: voter listing for one post,
// addressed by message id or t.me link.
func (s *Service) HandleVoters(c tele.Context) error {
	if !s.cfg.IsAdmin(c.Sender().ID) {
		return c.Reply(templates.AdminOnly)
	}
	payload := c.Message().Payload
	if payload == "" {
		return c.Reply(templates.VotersUsage)
	}
	key, ok := registration.ParseMessageLink(payload)
	if !ok {
		messageID, err := strconv.Atoi(payload)
		if err != nil {
			return c.Reply(templates.VotersUsage)
		}
		key = posts.Key{ChannelID: s.cfg.RidesChannelID, MessageID: messageID}
	}
	report, err := s.registration.VotersReport(context.Background(), key)
	if err != nil {
		return errors.Wrapf(err, "cannot fetch voters for %v", key)
	}
	return c.Reply(report)
}

// HandlePing is the admin liveness check.
func (s *Service) HandlePing(c tele.Context) error {
	if !s.cfg.IsAdmin(c.Sender().ID) {
		return c.Reply(templates.AdminOnly)
	}
	return c.Reply(templates.Pong)
}

func parseVoteCallback(submatch []string) (votes.Status, posts.Key, error) {
	status, err := votes.ParseStatus(submatch[1])
	if err != nil {
		return "", posts.Key{}, err
	}
	key, err := parseKeyCallback(submatch[1:])
	return status, key, err
}

func parseKeyCallback(submatch []string) (posts.Key, error) {
	channelID, err := strconv.ParseInt(submatch[1], 10, 64)
	if err != nil {
		return posts.Key{}, err
	}
	messageID, err := strconv.Atoi(submatch[2])
	if err != nil {
		return posts.Key{}, err
	}
	return posts.Key{ChannelID: channelID, MessageID: messageID}, nil
}

func respond(c tele.Context, text string, alert bool) error {
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: alert})
}
