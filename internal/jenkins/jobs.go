package jenkins

import (
	"context"
	"fmt"
	"strconv"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

var _ ci.Provider = (*Client)(nil)

func (c *Client) ListJobNames(ctx context.Context) ([]string, error) {
	var resp struct {
		Jobs []struct {
			FullName string `json:"fullName"`
		} `json:"jobs"`
	}
	if err := c.Get(ctx, "api/json", tree("jobs[fullName]"), &resp); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	names := make([]string, len(resp.Jobs))
	for i, j := range resp.Jobs {
		names[i] = j.FullName
	}
	return names, nil
}

// Status reports the result of the job's last build. A last build without a
// result is still running; a job without builds has not started.
func (c *Client) Status(ctx context.Context, job string) (model.JobStatus, error) {
	var build struct {
		Result *string `json:"result"`
	}
	err := c.Get(ctx, jobPath(job)+"/lastBuild/api/json", tree("result"), &build)
	if err == nil {
		if build.Result == nil {
			return model.StatusRunning, nil
		}
		return model.JobStatus(*build.Result), nil
	}
	if !ci.IsNotFound(err) {
		return model.StatusMissing, fmt.Errorf("status of %s: %w", job, err)
	}

	err = c.Get(ctx, jobPath(job)+"/api/json", tree("name"), nil)
	switch {
	case err == nil:
		return model.StatusNotStarted, nil
	case ci.IsNotFound(err):
		return model.StatusMissing, nil
	default:
		return model.StatusMissing, fmt.Errorf("status of %s: %w", job, err)
	}
}

func (c *Client) BuildNumbers(ctx context.Context, job string) ([]int, error) {
	var resp struct {
		Builds *[]struct {
			Number int `json:"number"`
		} `json:"builds"`
	}
	if err := c.Get(ctx, jobPath(job)+"/api/json", tree("builds[number]"), &resp); err != nil {
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("builds of %s: %w", job, err)
	}
	if resp.Builds == nil {
		return nil, nil
	}
	numbers := make([]int, len(*resp.Builds))
	for i, b := range *resp.Builds {
		numbers[i] = b.Number
	}
	return numbers, nil
}

func (c *Client) ParameterNames(ctx context.Context, job string) ([]string, error) {
	var resp struct {
		Actions []struct {
			ParameterDefinitions []struct {
				Name string `json:"name"`
			} `json:"parameterDefinitions"`
		} `json:"actions"`
	}
	if err := c.Get(ctx, jobPath(job)+"/api/json", tree("actions[parameterDefinitions[name]]"), &resp); err != nil {
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("parameters of %s: %w", job, err)
	}
	for _, action := range resp.Actions {
		if len(action.ParameterDefinitions) == 0 {
			continue
		}
		names := make([]string, len(action.ParameterDefinitions))
		for i, p := range action.ParameterDefinitions {
			names[i] = p.Name
		}
		return names, nil
	}
	return nil, nil
}

// LastParameterValues returns the parameters the job's last build ran with.
func (c *Client) LastParameterValues(ctx context.Context, job string) ([]model.Param, error) {
	var resp struct {
		Actions []struct {
			Parameters []struct {
				Name  string      `json:"name"`
				Value interface{} `json:"value"`
			} `json:"parameters"`
		} `json:"actions"`
	}
	err := c.Get(ctx, jobPath(job)+"/lastBuild/api/json", tree("actions[parameters[name,value]]"), &resp)
	if err != nil {
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("last parameters of %s: %w", job, err)
	}
	for _, action := range resp.Actions {
		if len(action.Parameters) == 0 {
			continue
		}
		params := make([]model.Param, len(action.Parameters))
		for i, p := range action.Parameters {
			params[i] = model.Param{Name: p.Name, Value: formatValue(p.Value)}
		}
		return params, nil
	}
	return nil, nil
}

// TestFailures returns the failing cases of a build's test report. Builds
// without a report have no failures.
func (c *Client) TestFailures(ctx context.Context, job string, build int) ([]model.TestCase, error) {
	ref := "lastBuild"
	if build > 0 {
		ref = strconv.Itoa(build)
	}
	var resp struct {
		Suites []struct {
			Cases []model.TestCase `json:"cases"`
		} `json:"suites"`
	}
	err := c.Get(ctx, fmt.Sprintf("%s/%s/testReport/api/json", jobPath(job), ref), tree("suites[cases[name,status]]"), &resp)
	if err != nil {
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("test report of %s #%s: %w", job, ref, err)
	}
	var failures []model.TestCase
	for _, suite := range resp.Suites {
		for _, tc := range suite.Cases {
			if !tc.Passed() {
				failures = append(failures, tc)
			}
		}
	}
	return failures, nil
}

func (c *Client) JobURL(job string) string {
	return c.URL(jobPath(job))
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
