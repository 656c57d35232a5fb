package registration

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"

	"ride-registration-bot/config"
	"ride-registration-bot/metrics"
	"ride-registration-bot/posts"
	"ride-registration-bot/votes"
)

// Messenger is the slice of the messaging platform the service needs.
// The bot package provides the telebot-backed implementation.
type Messenger interface {
	Send(chatID int64, text string, markup *tele.ReplyMarkup) (messageID int, err error)
	Reply(chatID int64, replyTo int, text string, markup *tele.ReplyMarkup) (messageID int, err error)
	Edit(chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error
	Delete(chatID int64, messageID int) error
	UserName(userID int64) string
}

// Service publishes registration cards and keeps their counts in sync.
type Service struct {
	messenger Messenger
	posts     posts.Store
	votes     *votes.Service
	cfg       config.Config
	now       func() time.Time
}

func NewService(messenger Messenger, postStore posts.Store, voteService *votes.Service, cfg config.Config) *Service {
	return &Service{
		messenger: messenger,
		posts:     postStore,
		votes:     voteService,
		cfg:       cfg,
		now:       time.Now,
	}
}

// placement is where a strategy put the card. A pending placement has no
// location yet; the discussion watcher completes it once Telegram forwards
// the channel post into the linked group.
type placement struct {
	chatID    int64
	messageID int
	pending   bool
}

type strategy struct {
	mode  posts.Mode
	place func(ctx context.Context, key posts.Key, text string, markup *tele.ReplyMarkup) (placement, error)
}

// Create publishes a registration card for a newly accepted announcement.
// Strategies are tried in fallback order starting at the configured mode;
// when every strategy fails the announcement is dropped, not raised.
func (s *Service) Create(ctx context.Context, channelID int64, messageID int, mediaGroupID string) error {
	key := posts.Key{ChannelID: channelID, MessageID: messageID}
	if _, err := s.posts.GetPost(ctx, key); err == nil {
		log.Printf("registration already exists for %v", key)
		return nil
	} else if !errors.Is(err, posts.ErrNotFound) {
		return err
	}
	if mediaGroupID != "" {
		if _, err := s.posts.GetPostByMediaGroup(ctx, channelID, mediaGroupID); err == nil {
			log.Printf("registration already exists for album %v", mediaGroupID)
			return nil
		} else if !errors.Is(err, posts.ErrNotFound) {
			return err
		}
	}

	text, err := s.renderCard(ctx, key)
	if err != nil {
		return err
	}
	markup := s.buildMarkup(key, false)

	for _, st := range s.fallbackChain() {
		placed, err := st.place(ctx, key, text, markup)
		if err != nil {
			log.Printf("placement mode %v failed for %v: %v", st.mode, key, err.Error())
			continue
		}
		post := posts.Post{
			ChannelID:        channelID,
			ChannelMessageID: messageID,
			Mode:             st.mode,
			CreatedAt:        s.now().UTC(),
		}
		if mediaGroupID != "" {
			post.MediaGroupID = &mediaGroupID
		}
		if !placed.pending {
			post.RegistrationChatID = &placed.chatID
			post.RegistrationMessageID = &placed.messageID
		}
		if err := s.posts.CreatePost(ctx, post); err != nil {
			if errors.Is(err, posts.ErrAlreadyExists) {
				return nil
			}
			return errors.Wrap(err, "unable to save post")
		}
		metrics.RegistrationsCreated.WithLabelValues(string(st.mode)).Inc()
		log.Printf("registration created for %v using mode %v", key, st.mode)
		return nil
	}

	metrics.RegistrationsFailed.Inc()
	log.Printf("all registration modes failed for %v", key)
	return nil
}

// fallbackChain rotates all modes so the configured one is tried first.
func (s *Service) fallbackChain() []strategy {
	all := []strategy{
		{posts.ModeEditChannel, s.tryEditChannel},
		{posts.ModeDiscussionThread, s.tryDiscussionThread},
		{posts.ModeChannelReplyPost, s.tryChannelReply},
	}
	start := 0
	for i, st := range all {
		if st.mode == s.cfg.RegistrationMode {
			start = i
			break
		}
	}
	return append(all[start:], all[:start]...)
}

func (s *Service) tryEditChannel(_ context.Context, key posts.Key, text string, markup *tele.ReplyMarkup) (placement, error) {
	if err := s.messenger.Edit(key.ChannelID, key.MessageID, text, markup); err != nil {
		return placement{}, errors.Wrap(err, "cannot edit channel message")
	}
	return placement{chatID: key.ChannelID, messageID: key.MessageID}, nil
}

func (s *Service) tryDiscussionThread(ctx context.Context, key posts.Key, text string, markup *tele.ReplyMarkup) (placement, error) {
	if s.cfg.DiscussionGroupID == 0 {
		return placement{}, errors.New("no discussion group configured")
	}
	// The forward of the channel post into the group usually has not
	// arrived yet; the card is placed by CompleteDiscussion once it does.
	return placement{pending: true}, nil
}

func (s *Service) tryChannelReply(_ context.Context, key posts.Key, text string, markup *tele.ReplyMarkup) (placement, error) {
	sentID, err := s.messenger.Reply(key.ChannelID, key.MessageID, text, markup)
	if err == nil {
		return placement{chatID: key.ChannelID, messageID: sentID}, nil
	}
	log.Printf("cannot reply in channel for %v, trying without reply: %v", key, err.Error())
	sentID, err = s.messenger.Send(key.ChannelID, text, s.buildMarkup(key, true))
	if err != nil {
		return placement{}, errors.Wrap(err, "cannot post to channel")
	}
	return placement{chatID: key.ChannelID, messageID: sentID}, nil
}

// Update re-renders the card at its stored location with current counts.
// Rendering is deterministic, so an unchanged card is an unchanged message.
func (s *Service) Update(ctx context.Context, key posts.Key) error {
	post, err := s.posts.GetPost(ctx, key)
	if err != nil {
		return err
	}
	if !post.Placed() {
		return nil
	}
	text, err := s.renderCard(ctx, key)
	if err != nil {
		return err
	}
	includeLink := post.Mode == posts.ModeChannelReplyPost && *post.RegistrationMessageID != key.MessageID
	markup := s.buildMarkup(key, includeLink)
	return s.messenger.Edit(*post.RegistrationChatID, *post.RegistrationMessageID, text, markup)
}

// CompleteDiscussion places a pending discussion-thread card as a reply to
// the channel post's forward once the watcher has captured it.
func (s *Service) CompleteDiscussion(ctx context.Context, key posts.Key) error {
	post, err := s.posts.GetPost(ctx, key)
	if errors.Is(err, posts.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if post.Mode != posts.ModeDiscussionThread || post.Placed() || post.DiscussionMessageID == nil {
		return nil
	}
	text, err := s.renderCard(ctx, key)
	if err != nil {
		return err
	}
	sentID, err := s.messenger.Reply(s.cfg.DiscussionGroupID, *post.DiscussionMessageID, text, s.buildMarkup(key, false))
	if err != nil {
		return errors.Wrap(err, "cannot post to discussion group")
	}
	if err := s.posts.SetRegistration(ctx, key, s.cfg.DiscussionGroupID, sentID); err != nil {
		return err
	}
	log.Printf("registration completed in discussion thread for %v", key)
	return nil
}

// PublishVoters posts the voters listing into the discussion thread,
// replacing the previously published one.
func (s *Service) PublishVoters(ctx context.Context, key posts.Key) error {
	if s.cfg.DiscussionGroupID == 0 {
		return errors.New("discussion group is not configured")
	}
	post, err := s.posts.GetPost(ctx, key)
	if err != nil {
		return err
	}
	if post.DiscussionMessageID == nil {
		return errors.New("discussion thread is not known yet")
	}
	text, err := s.renderVoters(ctx, key)
	if err != nil {
		return err
	}
	if post.VotersMessageID != nil {
		if err := s.messenger.Delete(s.cfg.DiscussionGroupID, *post.VotersMessageID); err != nil {
			log.Printf("could not delete previous voters message for %v: %v", key, err.Error())
		}
	}
	sentID, err := s.messenger.Reply(s.cfg.DiscussionGroupID, *post.DiscussionMessageID, text, nil)
	if err != nil {
		return errors.Wrap(err, "cannot send voters message")
	}
	return s.posts.SetVotersMessage(ctx, key, sentID)
}
