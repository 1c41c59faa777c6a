package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/authdoc/go-authdoc-client/apiclient"
	"github.com/authdoc/go-authdoc-client/guard"
	"github.com/authdoc/go-authdoc-client/internal/config"
	"github.com/authdoc/go-authdoc-client/session"
	"github.com/authdoc/go-authdoc-client/token"
	"github.com/authdoc/go-authdoc-client/token/filerepo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	rootCmd := &cobra.Command{
		Use:           "authdoc",
		Short:         "Client for the AuthDoc document authentication service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.restoreCmd(),
		a.verifyCmd(),
		a.resultCmd(),
	)

	return rootCmd.Execute()
}

// app bundles the wired client stack shared by all commands.
type app struct {
	cfg      config.Config
	tokens   token.Repo
	api      *apiclient.Client
	sessions *session.Service
	guard    *guard.Guard
	log      zerolog.Logger
}

func newApp() (*app, error) {
	cfg := config.New()
	log := newLogger(cfg.GetEnv())

	tokens, err := filerepo.New(cfg.GetDataFolder(),
		filerepo.WithPassphrase(cfg.GetTokenPassphrase()),
		filerepo.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	api, err := apiclient.New(cfg, tokens, apiclient.WithLogger(log))
	if err != nil {
		return nil, err
	}

	sessions, err := session.New(api, tokens, session.WithLogger(log))
	if err != nil {
		return nil, err
	}
	sessions.Subscribe(func(snap session.Snapshot) {
		log.Debug().Bool("logged_in", snap.LoggedIn()).Msg("session state changed")
	})

	return &app{
		cfg:      cfg,
		tokens:   tokens,
		api:      api,
		sessions: sessions,
		guard:    guard.New(sessions, guard.WithLoginPath(cfg.GetLoginPath())),
		log:      log,
	}, nil
}

func newLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "DEV" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
