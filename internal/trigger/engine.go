// Package trigger decides how a job should be triggered and triggers it.
package trigger

import (
	"context"
	"fmt"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

// ErrMissingToken is returned before any request is made when the user has
// no API token configured.
var ErrMissingToken = errbuilder.New().
	WithCode(errbuilder.CodeFailedPrecondition).
	WithMsg("api token not configured")

type Engine struct {
	provider ci.Provider
	log      logrus.FieldLogger
}

func New(provider ci.Provider, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{provider: provider, log: log}
}

// Decide picks the trigger call for job. Explicit parameters are sent as-is.
// Otherwise a parameterized job that has been built before replays the
// parameters of its last build, since the server does not accept a
// parameterized trigger without values once the job has run.
func (e *Engine) Decide(ctx context.Context, job string, explicit *string) (model.TriggerPlan, error) {
	if explicit != nil {
		raw := *explicit
		return model.TriggerPlan{Job: job, Kind: model.EndpointBuildWithParameters, Raw: &raw}, nil
	}

	builds, err := e.provider.BuildNumbers(ctx, job)
	if err != nil {
		return model.TriggerPlan{}, fmt.Errorf("decide %s: %w", job, err)
	}
	params, err := e.provider.ParameterNames(ctx, job)
	if err != nil {
		return model.TriggerPlan{}, fmt.Errorf("decide %s: %w", job, err)
	}

	switch {
	case len(params) == 0:
		return model.TriggerPlan{Job: job, Kind: model.EndpointBuild}, nil
	case len(builds) == 0:
		return model.TriggerPlan{Job: job, Kind: model.EndpointBuildWithParameters}, nil
	}

	values, err := e.provider.LastParameterValues(ctx, job)
	if err != nil {
		return model.TriggerPlan{}, fmt.Errorf("decide %s: %w", job, err)
	}
	return model.TriggerPlan{Job: job, Kind: model.EndpointBuildWithParameters, Params: values}, nil
}

// Execute sends plan to the CI server. Once issued the request is not
// cancelled with ctx.
func (e *Engine) Execute(ctx context.Context, plan model.TriggerPlan, creds ci.Credentials) error {
	if creds.Token == "" {
		return ErrMissingToken
	}
	if err := e.provider.Trigger(context.WithoutCancel(ctx), plan, creds); err != nil {
		e.log.WithError(err).WithField("job", plan.Job).WithField("user", creds.User).Warn("trigger failed")
		return err
	}
	e.log.WithFields(logrus.Fields{
		"job":      plan.Job,
		"user":     creds.User,
		"endpoint": plan.Kind.String(),
	}).Info("job triggered")
	return nil
}

// Trigger decides and executes in one step. A missing token fails before
// any metadata lookup.
func (e *Engine) Trigger(ctx context.Context, job string, explicit *string, creds ci.Credentials) (model.TriggerPlan, error) {
	if creds.Token == "" {
		return model.TriggerPlan{}, ErrMissingToken
	}
	plan, err := e.Decide(ctx, job, explicit)
	if err != nil {
		return model.TriggerPlan{}, err
	}
	return plan, e.Execute(ctx, plan, creds)
}
