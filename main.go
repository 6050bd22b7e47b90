package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/grid-server/internal/config"
	"github.com/robalobadob/wordle/apps/grid-server/internal/daily"
	"github.com/robalobadob/wordle/apps/grid-server/internal/game"
	"github.com/robalobadob/wordle/apps/grid-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/grid-server/internal/store"
	"github.com/robalobadob/wordle/apps/grid-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg.Logging)
	if cfg.InsecureSecret() {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	lists, err := words.Load(words.Source{
		AnswersFile: cfg.Words.AnswersFile,
		AllowedFile: cfg.Words.AllowedFile,
		Length:      cfg.Game.WordLength,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	nAnswers, nAllowed := lists.Stats()
	log.Info().Int("answers", nAnswers).Int("allowed", nAllowed).Int("length", lists.Length()).Msg("word lists loaded")

	answers := lists.Answers()
	eng := game.NewEngine(lists, map[game.Mode]game.WordPicker{
		game.ModeRandom: words.NewRandom(answers, nil),
		game.ModeDaily:  &daily.Picker{Answers: answers, Salt: cfg.Game.DailySalt},
	}, game.Settings{
		MaxTries:   cfg.Game.MaxTries,
		Rule:       cfg.Game.Rule,
		AutoSubmit: cfg.Game.AutoSubmit,
	})

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open session store")
	}
	defer st.Close()

	srv := httpserver.New(st, eng, httpserver.Options{
		JWTSecret:        []byte(cfg.Auth.JWTSecret),
		TokenTTL:         cfg.Auth.TokenTTL,
		ClientOrigin:     cfg.Server.ClientOrigin,
		RequestTimeout:   cfg.Server.RequestTimeout,
		AllowFixedAnswer: cfg.Game.AllowFixedAnswer,
		Words:            lists,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go pruneLoop(ctx, st, cfg.Store)

	go func() {
		log.Info().Str("addr", httpSrv.Addr).Str("rule", cfg.Game.Rule.String()).Str("store", cfg.Store.Driver).Msg("starting grid-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(c config.LoggingConfig) {
	if lvl, err := zerolog.ParseLevel(c.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openStore(c config.StoreConfig) (store.Store, error) {
	if c.Driver == "sqlite" {
		log.Info().Str("path", c.DBPath).Msg("using sqlite session store")
		return store.OpenSQLite(c.DBPath)
	}
	return store.NewMemoryStore(), nil
}

// pruneLoop drops sessions idle for longer than IdleTTL until ctx ends.
func pruneLoop(ctx context.Context, st store.Store, c config.StoreConfig) {
	t := time.NewTicker(c.PruneEach)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Prune(ctx, now.Add(-c.IdleTTL))
			if err != nil {
				log.Error().Err(err).Msg("prune sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("pruned", n).Msg("idle sessions removed")
			}
		}
	}
}
