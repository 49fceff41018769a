// Package bot implements the chat commands and build notifications on top of
// the search, trigger and session packages.
package bot

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/alias"
	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/listing"
	"github.com/altinukshini/jenkins-bot/internal/notify"
	"github.com/altinukshini/jenkins-bot/internal/ops"
	"github.com/altinukshini/jenkins-bot/internal/session"
	"github.com/altinukshini/jenkins-bot/internal/trigger"
)

const DefaultMaxCandidates = 5

// ErrInvalidIndex is returned for build-by-index requests that do not point
// into the user's last listing.
var ErrInvalidIndex = ops.ErrInvalidIndex

// Deps are the collaborators a Bot needs.
type Deps struct {
	Sessions *session.Repository
	Provider ci.Provider
	Lister   *listing.Lister
	Trigger  *trigger.Engine
	Aliases  *alias.Resolver
}

type Bot struct {
	sessions *session.Repository
	provider ci.Provider
	lister   *listing.Lister
	trigger  *trigger.Engine
	aliases  *alias.Resolver

	notifier      notify.Notifier
	marker        StatusMarker
	serverURL     string
	admins        map[string]bool
	maxCandidates int
	log           logrus.FieldLogger

	randMu sync.Mutex
	rand   *rand.Rand
}

type Option func(*Bot)

func WithNotifier(n notify.Notifier) Option {
	return func(b *Bot) { b.notifier = n }
}

// WithMarker sets how statuses are rendered in listings.
func WithMarker(m StatusMarker) Option {
	return func(b *Bot) { b.marker = m }
}

// WithServerURL sets the CI server URL used in links to user settings and builds.
func WithServerURL(u string) Option {
	return func(b *Bot) { b.serverURL = strings.TrimSuffix(u, "/") }
}

func WithAdmins(users ...string) Option {
	return func(b *Bot) {
		for _, u := range users {
			b.admins[u] = true
		}
	}
}

// WithMaxCandidates sets how many jobs are shown for an ambiguous alias.
func WithMaxCandidates(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.maxCandidates = n
		}
	}
}

// WithRand sets the source for flavor comments.
func WithRand(r *rand.Rand) Option {
	return func(b *Bot) { b.rand = r }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bot) { b.log = log }
}

func New(deps Deps, opts ...Option) *Bot {
	b := &Bot{
		sessions:      deps.Sessions,
		provider:      deps.Provider,
		lister:        deps.Lister,
		trigger:       deps.Trigger,
		aliases:       deps.Aliases,
		marker:        ChatMarker,
		admins:        make(map[string]bool),
		maxCandidates: DefaultMaxCandidates,
		log:           logrus.StandardLogger(),
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.notifier == nil {
		b.notifier = notify.LogNotifier{Log: b.log}
	}
	return b
}

// IsAdmin reports whether user may run admin-only commands.
func (b *Bot) IsAdmin(user string) bool {
	return b.admins[user]
}

func (b *Bot) pick(choices []string) string {
	b.randMu.Lock()
	defer b.randMu.Unlock()
	return choices[b.rand.Intn(len(choices))]
}
