package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fendriknuruljadid/astrovia-app/authflow"
	"github.com/fendriknuruljadid/astrovia-app/internal/config"
	"github.com/fendriknuruljadid/astrovia-app/progress"
	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/server"
	"github.com/fendriknuruljadid/astrovia-app/session"
	"github.com/fendriknuruljadid/astrovia-app/signing"
	"github.com/fendriknuruljadid/astrovia-app/token"
)

func main() {
	cfg := config.New()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	banner := figure.NewFigure(cfg.GetAppName(), "cybermedium", true)
	banner.Print()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config) error {
	secure := cfg.GetEnv() != "DEV"

	signer, err := signing.NewSigner(cfg.GetSignatureSecret())
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(cfg.GetSessionSecret())
	if err != nil {
		return err
	}
	store := session.NewStore(codec, secure, int(cfg.GetSessionMaxAge().Seconds()))

	public := relay.New(cfg.GetAPIURL(), cfg.GetRequestTimeout(), signer, nil)
	coordinator := token.NewCoordinator(store, public)
	api := relay.New(cfg.GetAPIURL(), cfg.GetRequestTimeout(), signer, coordinator)

	flows, err := authflow.NewFlowManager(cfg.GetSessionSecret(), secure)
	if err != nil {
		return err
	}
	captcha := authflow.NewTurnstileVerifier(cfg.GetTurnstileSecretKey(), authflow.DefaultTurnstileURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	google, err := authflow.NewGoogleProvider(ctx,
		cfg.GetGoogleClientID(),
		cfg.GetGoogleClientSecret(),
		cfg.GetBaseURL()+cfg.GetGoogleRedirectPath(),
	)
	if err != nil {
		return err
	}

	auth := authflow.NewController(public, store, flows, captcha, google)

	subscriber := progress.NewSubscriber(cfg.GetProgressWSURL(), func(jobID string) {
		// The next job-list fetch picks up the finished clip; nothing is
		// cached server-side.
		log.Info().Str("job_id", jobID).Msg("clip job finished")
	})
	defer subscriber.Close()

	srv := server.New(cfg, server.Deps{
		Sessions: store,
		Auth:     auth,
		API:      api,
		Progress: subscriber,
	})
	for _, route := range srv.Routes() {
		log.Debug().Str("route", route).Msg("registered")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
