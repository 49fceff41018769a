// Package listing turns search factors into a status-annotated job listing.
package listing

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/filter"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

const (
	DefaultMaxResults  = 20
	DefaultConcurrency = 8
)

// Entry is one line of a listing.
type Entry struct {
	Job    string
	Status model.JobStatus
}

// TooManyError is returned when a search matches more jobs than can be listed.
type TooManyError struct {
	Count int
	Max   int
}

func (e *TooManyError) Error() string {
	return fmt.Sprintf("search matched %d jobs, more than %d", e.Count, e.Max)
}

type Lister struct {
	provider    ci.Provider
	filter      *filter.Engine
	maxResults  int
	concurrency int
}

type Option func(*Lister)

func WithMaxResults(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.maxResults = n
		}
	}
}

// WithConcurrency bounds the number of status lookups in flight.
func WithConcurrency(n int) Option {
	return func(l *Lister) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func New(provider ci.Provider, f *filter.Engine, opts ...Option) *Lister {
	l := &Lister{
		provider:    provider,
		filter:      f,
		maxResults:  DefaultMaxResults,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Find lists the jobs matching factors in ascending order, each with its
// current status. Searches over the result cap fail with *TooManyError
// before any status is looked up.
func (l *Lister) Find(ctx context.Context, factors []string) ([]Entry, error) {
	all, err := l.provider.ListJobNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	names := l.filter.Filter(all, factors)
	sort.Strings(names)
	if len(names) > l.maxResults {
		return nil, &TooManyError{Count: len(names), Max: l.maxResults}
	}
	return l.Annotate(ctx, names)
}

// Annotate looks up the status of every job concurrently. Entries keep the
// order of jobs.
func (l *Lister) Annotate(ctx context.Context, jobs []string) ([]Entry, error) {
	entries := make([]Entry, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			status, err := l.provider.Status(ctx, job)
			if err != nil {
				return err
			}
			entries[i] = Entry{Job: job, Status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("annotate listing: %w", err)
	}
	return entries, nil
}

// Jobs returns the job names of entries.
func Jobs(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Job
	}
	return names
}
