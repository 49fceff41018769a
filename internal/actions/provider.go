package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

var _ ci.Provider = (*Client)(nil)

var errNoToken = errors.New("no api token")

func (c *Client) ListJobNames(ctx context.Context) ([]string, error) {
	workflows, err := c.listWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(workflows))
	for i, w := range workflows {
		names[i] = jobName(w)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) Status(ctx context.Context, job string) (model.JobStatus, error) {
	w, ok, err := c.workflow(ctx, job)
	if err != nil || !ok {
		return model.StatusMissing, err
	}
	run, ok, err := c.findRun(ctx, w.ID, 0)
	if err != nil {
		return model.StatusMissing, fmt.Errorf("status of %s: %w", job, err)
	}
	if !ok {
		return model.StatusNotStarted, nil
	}
	return runStatus(run), nil
}

func (c *Client) BuildNumbers(ctx context.Context, job string) ([]int, error) {
	w, ok, err := c.workflow(ctx, job)
	if err != nil || !ok {
		return nil, err
	}
	runs, err := c.listRuns(ctx, w.ID, RunsFilter{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("builds of %s: %w", job, err)
	}
	numbers := make([]int, len(runs))
	for i, r := range runs {
		numbers[i] = r.RunNumber
	}
	return numbers, nil
}

func (c *Client) ParameterNames(ctx context.Context, job string) ([]string, error) {
	inputs, err := c.inputs(ctx, job)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	return names, nil
}

// LastParameterValues returns the declared input defaults. The runs API
// does not report the inputs a run was dispatched with.
func (c *Client) LastParameterValues(ctx context.Context, job string) ([]model.Param, error) {
	inputs, err := c.inputs(ctx, job)
	if err != nil {
		return nil, err
	}
	params := make([]model.Param, len(inputs))
	for i, in := range inputs {
		params[i] = model.Param{Name: in.Name, Value: in.Default}
	}
	return params, nil
}

func (c *Client) inputs(ctx context.Context, job string) ([]Input, error) {
	w, ok, err := c.workflow(ctx, job)
	if err != nil || !ok {
		return nil, err
	}
	inputs, err := c.dispatchInputs(ctx, w)
	if ci.IsNotFound(err) {
		return nil, nil
	}
	return inputs, err
}

// TestFailures lists the failed jobs of a run; Actions has no test report API.
func (c *Client) TestFailures(ctx context.Context, job string, build int) ([]model.TestCase, error) {
	w, ok, err := c.workflow(ctx, job)
	if err != nil || !ok {
		return nil, err
	}
	run, ok, err := c.findRun(ctx, w.ID, build)
	if err != nil || !ok {
		return nil, err
	}
	jobs, err := c.listJobs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	var failures []model.TestCase
	for _, j := range jobs {
		if jobFailed(j) {
			failures = append(failures, model.TestCase{Name: j.Name, Status: strings.ToUpper(j.Conclusion)})
		}
	}
	return failures, nil
}

type dispatchRequest struct {
	Ref    string            `json:"ref"`
	Inputs map[string]string `json:"inputs,omitempty"`
}

// Trigger dispatches the workflow on the configured ref as the requesting user.
func (c *Client) Trigger(ctx context.Context, plan model.TriggerPlan, creds ci.Credentials) error {
	if creds.Token == "" {
		return fmt.Errorf("trigger %s for %s: %w", plan.Job, creds.User, errNoToken)
	}
	w, ok, err := c.workflow(ctx, plan.Job)
	if err != nil {
		return err
	}
	if !ok {
		return &ci.ResponseError{Context: "trigger " + plan.Job, StatusCode: http.StatusNotFound}
	}

	inputs, err := planInputs(plan)
	if err != nil {
		return err
	}
	rest, err := c.restClient(creds.Token)
	if err != nil {
		return fmt.Errorf("trigger %s: %w", plan.Job, err)
	}
	endpoint := c.repoPath(fmt.Sprintf("actions/workflows/%d/dispatches", w.ID))
	if err := post(ctx, rest, endpoint, dispatchRequest{Ref: c.ref, Inputs: inputs}); err != nil {
		return fmt.Errorf("trigger %s: %w", plan.Job, err)
	}
	c.log.WithField("job", plan.Job).WithField("user", creds.User).Info("workflow dispatched")
	return nil
}

func planInputs(plan model.TriggerPlan) (map[string]string, error) {
	if plan.Kind == model.EndpointBuild {
		return nil, nil
	}
	inputs := make(map[string]string)
	if plan.Raw != nil {
		values, err := url.ParseQuery(*plan.Raw)
		if err != nil {
			return nil, fmt.Errorf("parse parameters %q: %w", *plan.Raw, err)
		}
		for name := range values {
			inputs[name] = values.Get(name)
		}
		return inputs, nil
	}
	for _, p := range plan.Params {
		inputs[p.Name] = p.Value
	}
	return inputs, nil
}

func (c *Client) JobURL(job string) string {
	file := job + ".yml"
	c.mu.Lock()
	if w, ok := c.workflows[job]; ok {
		file = path.Base(w.Path)
	}
	c.mu.Unlock()
	return fmt.Sprintf("https://%s/%s/%s/actions/workflows/%s", c.host, c.owner, c.repo, file)
}
