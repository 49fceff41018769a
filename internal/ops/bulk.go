// Package ops runs multi-job operations on behalf of a user.
package ops

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
	"github.com/altinukshini/jenkins-bot/internal/trigger"
)

// ErrInvalidIndex is returned for a listing index that is not a number or
// falls outside the listing.
var ErrInvalidIndex = errors.New("invalid listing index")

// SelectJobs maps listing indices to job names, in the order given. Every
// index must be valid; duplicates are triggered once.
func SelectJobs(listing []string, args []string) ([]string, error) {
	seen := make(map[int]bool, len(args))
	var jobs []string
	for _, arg := range args {
		i, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIndex, arg)
		}
		if i < 0 || i >= len(listing) {
			return nil, fmt.Errorf("%w: %d (listing has %d jobs)", ErrInvalidIndex, i, len(listing))
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		jobs = append(jobs, listing[i])
	}
	return jobs, nil
}

// Triggerer decides and triggers a single job.
type Triggerer interface {
	Trigger(ctx context.Context, job string, explicit *string, creds ci.Credentials) (model.TriggerPlan, error)
}

// JobError is a trigger failure for one job of a bulk run.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string { return fmt.Sprintf("job %s: %v", e.Job, e.Err) }

func (e *JobError) Unwrap() error { return e.Err }

type BulkTriggerResult struct {
	Completed int
	Failed    int
	Triggered []string
	Errors    []error
}

// BulkTrigger triggers jobs one after another. Cancellation is checked
// between jobs; a request already sent is not undone. A missing token
// stops the run.
func BulkTrigger(ctx context.Context, t Triggerer, jobs []string, params *string, creds ci.Credentials, onProgress func(completed, total int)) (*BulkTriggerResult, error) {
	result := &BulkTriggerResult{}
	total := len(jobs)

	for i, job := range jobs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		_, err := t.Trigger(ctx, job, params, creds)
		switch {
		case errors.Is(err, trigger.ErrMissingToken):
			return result, err
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, &JobError{Job: job, Err: err})
		default:
			result.Completed++
			result.Triggered = append(result.Triggered, job)
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return result, nil
}
