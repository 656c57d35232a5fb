package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ride-registration-bot/bot"
	"ride-registration-bot/config"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("unable to load configuration: %v", err.Error())
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	confirm := make(chan struct{})
	go func() {
		if err := bot.Start(ctx, cfg, confirm); err != nil {
			log.Fatal(err)
		}
	}()
	s := make(chan os.Signal, 1)
	signal.Notify(s, os.Interrupt, syscall.SIGTERM)
	<-s
	cancel()
	<-confirm
}
