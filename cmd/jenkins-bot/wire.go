package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/actions"
	"github.com/altinukshini/jenkins-bot/internal/alias"
	"github.com/altinukshini/jenkins-bot/internal/bot"
	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/config"
	"github.com/altinukshini/jenkins-bot/internal/filter"
	"github.com/altinukshini/jenkins-bot/internal/jenkins"
	"github.com/altinukshini/jenkins-bot/internal/listing"
	"github.com/altinukshini/jenkins-bot/internal/notify"
	"github.com/altinukshini/jenkins-bot/internal/session"
	"github.com/altinukshini/jenkins-bot/internal/trigger"
)

// app holds the wired components for one process.
type app struct {
	cfg     config.Config
	log     *logrus.Logger
	bot     *bot.Bot
	aliases *alias.Resolver
	close   func() error
}

func newApp(cfg config.Config, log *logrus.Logger, opts ...bot.Option) (*app, error) {
	provider, err := newProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	var store session.Store = session.NewMemoryStore()
	closeStore := func() error { return nil }
	if cfg.Session.Path != "" {
		sqlite, err := session.OpenSQLite(cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		store, closeStore = sqlite, sqlite.Close
	} else {
		log.Warn("session.path not set; user settings are kept in memory only")
	}

	sessions := session.NewRepository(store, log)
	engine := filter.New()
	aliases := alias.NewResolver(sessions, provider, engine)

	var notifier notify.Notifier = notify.LogNotifier{Log: log}
	if cfg.RocketChat.URL != "" {
		notifier = notify.NewRocketChat(cfg.RocketChat.URL, cfg.RocketChat.UserID, cfg.RocketChat.Token)
	}

	opts = append([]bot.Option{
		bot.WithNotifier(notifier),
		bot.WithServerURL(cfg.ServerURL()),
		bot.WithAdmins(cfg.Admins...),
		bot.WithMaxCandidates(cfg.Alias.MaxCandidates),
		bot.WithLogger(log),
	}, opts...)

	b := bot.New(bot.Deps{
		Sessions: sessions,
		Provider: provider,
		Lister: listing.New(provider, engine,
			listing.WithMaxResults(cfg.Find.MaxResults),
			listing.WithConcurrency(cfg.Find.Concurrency)),
		Trigger: trigger.New(provider, log),
		Aliases: aliases,
	}, opts...)

	return &app{cfg: cfg, log: log, bot: b, aliases: aliases, close: closeStore}, nil
}

func newProvider(cfg config.Config, log *logrus.Logger) (ci.Provider, error) {
	switch cfg.Provider {
	case config.ProviderJenkins:
		return jenkins.NewClient(cfg.Jenkins.URL, cfg.Jenkins.Username, cfg.Jenkins.Token, jenkins.WithLogger(log))
	case config.ProviderActions:
		return actions.NewClient(cfg.Actions.Owner, cfg.Actions.Repo, cfg.Actions.Token,
			actions.WithRef(cfg.Actions.Ref), actions.WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
