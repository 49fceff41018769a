// Package citest provides an in-memory ci.Provider for tests.
package citest

import (
	"context"
	"sort"
	"sync"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

// Job is the fake server's view of one job.
type Job struct {
	Status     model.JobStatus
	Builds     []int
	Parameters []string
	LastValues []model.Param
	Failures   map[int][]model.TestCase
}

// Triggered records one call to Trigger.
type Triggered struct {
	Plan  model.TriggerPlan
	Creds ci.Credentials
}

type Provider struct {
	mu        sync.Mutex
	jobs      map[string]Job
	triggered []Triggered
	calls     map[string]int

	// TriggerErr, when set, is returned by Trigger for the named jobs.
	TriggerErr map[string]error
	// StatusErr, when set, is returned by every Status call.
	StatusErr error
}

func New(jobs map[string]Job) *Provider {
	if jobs == nil {
		jobs = map[string]Job{}
	}
	return &Provider{jobs: jobs, calls: map[string]int{}}
}

func (p *Provider) count(method string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[method]++
}

// Calls returns how many times method was invoked.
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

// Triggered returns the trigger calls made so far, in order.
func (p *Provider) Triggered() []Triggered {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Triggered(nil), p.triggered...)
}

func (p *Provider) ListJobNames(ctx context.Context) ([]string, error) {
	p.count("ListJobNames")
	names := make([]string, 0, len(p.jobs))
	for name := range p.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *Provider) Status(ctx context.Context, job string) (model.JobStatus, error) {
	p.count("Status")
	if p.StatusErr != nil {
		return model.StatusMissing, p.StatusErr
	}
	j, ok := p.jobs[job]
	if !ok {
		return model.StatusMissing, nil
	}
	return j.Status, nil
}

func (p *Provider) BuildNumbers(ctx context.Context, job string) ([]int, error) {
	p.count("BuildNumbers")
	j, ok := p.jobs[job]
	if !ok {
		return nil, nil
	}
	return j.Builds, nil
}

func (p *Provider) ParameterNames(ctx context.Context, job string) ([]string, error) {
	p.count("ParameterNames")
	return p.jobs[job].Parameters, nil
}

func (p *Provider) LastParameterValues(ctx context.Context, job string) ([]model.Param, error) {
	p.count("LastParameterValues")
	return p.jobs[job].LastValues, nil
}

func (p *Provider) TestFailures(ctx context.Context, job string, build int) ([]model.TestCase, error) {
	p.count("TestFailures")
	return p.jobs[job].Failures[build], nil
}

func (p *Provider) Trigger(ctx context.Context, plan model.TriggerPlan, creds ci.Credentials) error {
	p.count("Trigger")
	if err := p.TriggerErr[plan.Job]; err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.triggered = append(p.triggered, Triggered{Plan: plan, Creds: creds})
	return nil
}

func (p *Provider) JobURL(job string) string {
	return "https://ci.example.com/job/" + job
}
