// Package ci defines what the bot needs from a CI server.
package ci

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

// Provider answers questions about jobs and triggers builds.
// Lookups of missing jobs or builds are not errors: Status returns
// model.StatusMissing, BuildNumbers returns nil and TestFailures returns nothing.
type Provider interface {
	ListJobNames(ctx context.Context) ([]string, error)
	Status(ctx context.Context, job string) (model.JobStatus, error)
	BuildNumbers(ctx context.Context, job string) ([]int, error)
	ParameterNames(ctx context.Context, job string) ([]string, error)
	LastParameterValues(ctx context.Context, job string) ([]model.Param, error)
	// TestFailures lists non-passing test cases of a build; build 0 means the latest one.
	TestFailures(ctx context.Context, job string, build int) ([]model.TestCase, error)
	Trigger(ctx context.Context, plan model.TriggerPlan, creds Credentials) error
	JobURL(job string) string
}

// Credentials identify the user on whose behalf a build is triggered.
type Credentials struct {
	User  string
	Token string
}

// ResponseError is returned for any non-2xx answer from the CI server.
type ResponseError struct {
	Context    string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d %s", e.Context, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %d %s\n%s", e.Context, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// IsNotFound reports whether err is a 404 from the CI server.
func IsNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
