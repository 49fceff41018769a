package jenkins

import (
	"context"
	"errors"
	"fmt"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

var errNoToken = errors.New("no api token")

// Trigger queues a build as described by plan, authenticated as creds.
func (c *Client) Trigger(ctx context.Context, plan model.TriggerPlan, creds ci.Credentials) error {
	if creds.Token == "" {
		return fmt.Errorf("trigger %s for %s: %w", plan.Job, creds.User, errNoToken)
	}

	path := jobPath(plan.Job) + "/build"
	if plan.Kind == model.EndpointBuildWithParameters {
		path = jobPath(plan.Job) + "/buildWithParameters"
		if q := plan.Query(); q != "" {
			path += "?" + q
		}
	}
	if err := c.Post(ctx, path, creds); err != nil {
		return fmt.Errorf("trigger %s: %w", plan.Job, err)
	}
	c.log.WithField("job", plan.Job).WithField("user", creds.User).Info("build triggered")
	return nil
}
