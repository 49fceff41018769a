// Package alias stores named search shortcuts and resolves them to a single job.
package alias

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/filter"
	"github.com/altinukshini/jenkins-bot/internal/model"
	"github.com/altinukshini/jenkins-bot/internal/session"
)

// ErrUnknownAlias is returned when the user has no alias of the given name.
var ErrUnknownAlias = errors.New("unknown alias")

// ErrEmptyName is returned when registering an alias without a name.
var ErrEmptyName = errbuilder.New().
	WithCode(errbuilder.CodeInvalidArgument).
	WithMsg("alias name must not be empty")

// AmbiguousError reports an alias whose pattern matched more than one job.
type AmbiguousError struct {
	Pattern    []string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("pattern %q matches %d jobs", strings.Join(e.Pattern, " "), len(e.Candidates))
}

// NoMatchError reports an alias whose pattern matched no job.
type NoMatchError struct {
	Pattern []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no job matches pattern %q", strings.Join(e.Pattern, " "))
}

// Match is a successfully resolved alias.
type Match struct {
	Job        string
	Parameters *string
}

// Named pairs an alias with its name.
type Named struct {
	Name string
	model.Alias
}

type Resolver struct {
	repo     *session.Repository
	provider ci.Provider
	filter   *filter.Engine
}

func NewResolver(repo *session.Repository, provider ci.Provider, f *filter.Engine) *Resolver {
	return &Resolver{repo: repo, provider: provider, filter: f}
}

// Register saves the alias, replacing one of the same name.
func (r *Resolver) Register(ctx context.Context, user, name string, pattern []string, params *string) error {
	if name == "" {
		return ErrEmptyName
	}
	a := model.Alias{Pattern: append([]string{}, pattern...)}
	if params != nil {
		p := *params
		a.Parameters = &p
	}
	return r.repo.SetAlias(ctx, user, name, a)
}

// Lookup returns the stored alias without resolving it.
func (r *Resolver) Lookup(ctx context.Context, user, name string) (model.Alias, error) {
	settings, err := r.repo.Load(ctx, user)
	if err != nil {
		return model.Alias{}, err
	}
	a, ok := settings.Aliases[name]
	if !ok {
		return model.Alias{}, ErrUnknownAlias
	}
	return a, nil
}

// Resolve filters the current job list with the alias pattern followed by
// extra. Exactly one job must match.
func (r *Resolver) Resolve(ctx context.Context, user, name string, extra []string) (Match, error) {
	a, err := r.Lookup(ctx, user, name)
	if err != nil {
		return Match{}, err
	}

	pattern := make([]string, 0, len(a.Pattern)+len(extra))
	pattern = append(pattern, a.Pattern...)
	pattern = append(pattern, extra...)

	all, err := r.provider.ListJobNames(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("resolve alias %s: %w", name, err)
	}
	jobs := r.filter.Filter(all, pattern)
	sort.Strings(jobs)

	switch len(jobs) {
	case 0:
		return Match{}, &NoMatchError{Pattern: pattern}
	case 1:
		return Match{Job: jobs[0], Parameters: a.Parameters}, nil
	default:
		return Match{}, &AmbiguousError{Pattern: pattern, Candidates: jobs}
	}
}

// List returns the user's aliases sorted by name.
func (r *Resolver) List(ctx context.Context, user string) ([]Named, error) {
	settings, err := r.repo.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]Named, 0, len(settings.Aliases))
	for _, name := range settings.AliasNames() {
		out = append(out, Named{Name: name, Alias: settings.Aliases[name]})
	}
	return out, nil
}
