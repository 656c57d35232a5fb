package bot

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"

	"ride-registration-bot/config"
	"ride-registration-bot/db"
	"ride-registration-bot/filter"
	"ride-registration-bot/metrics"
	"ride-registration-bot/mutex"
	"ride-registration-bot/registration"
	"ride-registration-bot/templates"
	"ride-registration-bot/votes"
)

// Start wires everything together and blocks until ctx is cancelled.
// confirm is signalled once the shutdown has finished.
func Start(ctx context.Context, cfg config.Config, confirm chan<- struct{}) error {
	templates.Override(cfg.Texts)

	store, err := db.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		store.EnableDebug()
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	log.Printf("database ready: %v", cfg.DatabasePath)

	var locker votes.Locker
	if cfg.RedisAddress != "" {
		locker = mutex.NewBuilder(cfg.RedisAddress)
	}
	voteService := votes.NewService(store, cfg.VoteCooldown, locker)

	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.BotToken,
		Poller: &tele.LongPoller{
			Timeout: time.Second * 10,
		},
	})
	if err != nil {
		return errors.Wrap(err, "error during creation of a new bot")
	}

	registrationService := registration.NewService(NewMessenger(bot), store, voteService, cfg)
	messageFilter := filter.New(cfg.RideFilter, cfg.RideHashtags, bot.Me.ID)
	service := NewService(cfg, messageFilter, voteService, registrationService, store)

	bot.Handle(tele.OnChannelPost, service.HandleChannelPost)
	bot.Handle(tele.OnText, service.HandleDiscussionMessage)
	bot.Handle(tele.OnMedia, service.HandleDiscussionMessage)
	bot.Handle("/voters", service.HandleVoters)
	bot.Handle("/ping", service.HandlePing)
	bot.Handle(tele.OnCallback, service.ProcessCallback)

	bot.OnError = func(err error, _ tele.Context) {
		log.Print(err.Error())
	}

	server := metrics.NewServer(cfg.HTTPAddress)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		<-ctx.Done()
		bot.Stop()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("error during http server shutdown: %v", err.Error())
		}
		if err := store.Close(); err != nil {
			log.Printf("error during database close: %v", err.Error())
		}
		confirm <- struct{}{}
	}()

	log.Printf("bot started as @%v, watching channel %v", bot.Me.Username, cfg.RidesChannelID)
	// Blocks until stop
	bot.Start()
	return nil
}
