package actions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

type RunsFilter struct {
	Branch  string
	PerPage int
	Page    int
}

func (f RunsFilter) QueryString() string {
	v := url.Values{}
	if f.Branch != "" {
		v.Set("branch", f.Branch)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "30")
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return "?" + v.Encode()
}

func (c *Client) listRuns(ctx context.Context, workflowID int64, filter RunsFilter) ([]Run, error) {
	var resp runsResponse
	err := c.get(ctx, fmt.Sprintf("actions/workflows/%d/runs%s", workflowID, filter.QueryString()), &resp)
	if err != nil {
		// Workflow may have been deleted; treat 404 as no runs.
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return resp.Runs, nil
}

// findRun returns the run with the given number, or the latest run for 0.
func (c *Client) findRun(ctx context.Context, workflowID int64, number int) (Run, bool, error) {
	perPage := 100
	if number == 0 {
		perPage = 1
	}
	runs, err := c.listRuns(ctx, workflowID, RunsFilter{PerPage: perPage})
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	if number == 0 {
		return runs[0], true, nil
	}
	for _, r := range runs {
		if r.RunNumber == number {
			return r, true, nil
		}
	}
	return Run{}, false, nil
}

func (c *Client) listJobs(ctx context.Context, runID int64) ([]Job, error) {
	var resp jobsResponse
	err := c.get(ctx, fmt.Sprintf("actions/runs/%d/jobs?filter=latest&per_page=100", runID), &resp)
	if err != nil {
		if ci.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list jobs for run %d: %w", runID, err)
	}
	return resp.Jobs, nil
}

// runStatus maps a workflow run onto a build status.
func runStatus(r Run) model.JobStatus {
	if r.Status != "completed" {
		return model.StatusRunning
	}
	switch r.Conclusion {
	case "success":
		return model.StatusSuccess
	case "failure", "timed_out", "startup_failure":
		return model.StatusFailure
	case "cancelled", "skipped", "stale":
		return model.StatusAborted
	default:
		return model.StatusUnstable
	}
}

// jobFailed reports whether a run's job counts as a failure.
func jobFailed(j Job) bool {
	switch j.Conclusion {
	case "success", "skipped", "neutral", "":
		return false
	default:
		return true
	}
}
