package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

// Repository loads and saves user settings on top of a Store. Every
// load-mutate-save sequence for a user runs under that user's lock, so
// concurrent commands and webhook events for one user never lose writes.
type Repository struct {
	store Store
	log   logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRepository(store Store, log logrus.FieldLogger) *Repository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Repository{store: store, log: log, locks: make(map[string]*sync.Mutex)}
}

func (r *Repository) lock(user string) func() {
	r.mu.Lock()
	l, ok := r.locks[user]
	if !ok {
		l = &sync.Mutex{}
		r.locks[user] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load returns the user's settings. Fields missing from the stored document
// keep their defaults.
func (r *Repository) Load(ctx context.Context, user string) (model.UserSettings, error) {
	defer r.lock(user)()
	return r.load(ctx, user)
}

// Save overwrites the user's settings.
func (r *Repository) Save(ctx context.Context, user string, settings model.UserSettings) error {
	defer r.lock(user)()
	return r.save(ctx, user, settings)
}

// Update applies fn to the user's current settings and saves the result.
// Nothing is saved when fn fails.
func (r *Repository) Update(ctx context.Context, user string, fn func(*model.UserSettings) error) (model.UserSettings, error) {
	defer r.lock(user)()

	settings, err := r.load(ctx, user)
	if err != nil {
		return model.UserSettings{}, err
	}
	if err := fn(&settings); err != nil {
		return model.UserSettings{}, err
	}
	if err := r.save(ctx, user, settings); err != nil {
		return model.UserSettings{}, err
	}
	return settings, nil
}

// Record adds run to the front of the user's history.
func (r *Repository) Record(ctx context.Context, user string, run model.JobRunRecord) error {
	_, err := r.Update(ctx, user, func(s *model.UserSettings) error {
		s.Record(run)
		assert.Assert(ctx, len(s.History) <= model.MaxHistory, "history exceeds its cap")
		return nil
	})
	return err
}

// Clear empties the user's history; token, listing and aliases are kept.
func (r *Repository) Clear(ctx context.Context, user string) error {
	_, err := r.Update(ctx, user, func(s *model.UserSettings) error {
		s.History = []model.JobRunRecord{}
		return nil
	})
	return err
}

// SetListing replaces the listing that build-by-index requests refer to.
func (r *Repository) SetListing(ctx context.Context, user string, jobs []string) error {
	_, err := r.Update(ctx, user, func(s *model.UserSettings) error {
		s.LastListing = append([]string{}, jobs...)
		return nil
	})
	return err
}

func (r *Repository) SetToken(ctx context.Context, user, token string) error {
	_, err := r.Update(ctx, user, func(s *model.UserSettings) error {
		s.Token = token
		return nil
	})
	return err
}

// SetAlias registers name, replacing any alias of the same name.
func (r *Repository) SetAlias(ctx context.Context, user, name string, alias model.Alias) error {
	_, err := r.Update(ctx, user, func(s *model.UserSettings) error {
		if s.Aliases == nil {
			s.Aliases = make(map[string]model.Alias)
		}
		s.Aliases[name] = alias
		return nil
	})
	return err
}

func (r *Repository) load(ctx context.Context, user string) (model.UserSettings, error) {
	settings := model.DefaultSettings()
	doc, err := r.store.Get(ctx, user)
	if err != nil {
		return settings, err
	}
	if doc == nil {
		return settings, nil
	}
	if err := json.Unmarshal(doc, &settings); err != nil {
		return model.DefaultSettings(), fmt.Errorf("decode settings for %s: %w", user, err)
	}
	if settings.History == nil {
		settings.History = []model.JobRunRecord{}
	}
	if settings.LastListing == nil {
		settings.LastListing = []string{}
	}
	return settings, nil
}

func (r *Repository) save(ctx context.Context, user string, settings model.UserSettings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings for %s: %w", user, err)
	}
	if err := r.store.Put(ctx, user, doc); err != nil {
		return err
	}
	r.log.WithField("user", user).Debug("settings saved")
	return nil
}
