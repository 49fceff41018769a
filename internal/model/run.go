package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobRunRecord is one entry of a user's build history.
type JobRunRecord struct {
	JobName      string     `json:"job_name"`
	Number       int        `json:"number"`
	Timestamp    time.Time  `json:"timestamp"`
	Host         string     `json:"builtOn,omitempty"`
	URL          string     `json:"url,omitempty"`
	Status       JobStatus  `json:"status"`
	TestFailures []TestCase `json:"test_failures,omitempty"`
}

type EventKind int

const (
	EventStarted EventKind = iota
	EventCompleted
)

func (k EventKind) String() string {
	if k == EventStarted {
		return "started"
	}
	return "completed"
}

// RunEvent is a validated build notification coming from the CI server.
type RunEvent struct {
	Kind      EventKind
	JobName   string
	Number    int
	Timestamp time.Time
	BuiltOn   string
	UserID    string
	URL       string
	Result    JobStatus
}

// RawRunEvent carries the webhook fields exactly as the CI plugin posts them.
type RawRunEvent struct {
	JobName   string `json:"job_name"`
	Number    string `json:"number"`
	Timestamp string `json:"timestamp"`
	BuiltOn   string `json:"builtOn"`
	Event     string `json:"event"`
	UserID    string `json:"userId"`
	URL       string `json:"url"`
	Result    string `json:"result"`
}

// Validate converts the raw payload into a RunEvent, rejecting incomplete ones.
func (r RawRunEvent) Validate() (RunEvent, error) {
	if r.JobName == "" {
		return RunEvent{}, fmt.Errorf("missing job_name")
	}
	if r.UserID == "" {
		return RunEvent{}, fmt.Errorf("missing userId")
	}
	number, err := strconv.Atoi(strings.TrimSpace(r.Number))
	if err != nil {
		return RunEvent{}, fmt.Errorf("invalid build number %q: %w", r.Number, err)
	}

	ev := RunEvent{
		Kind:    EventCompleted,
		JobName: r.JobName,
		Number:  number,
		BuiltOn: r.BuiltOn,
		UserID:  r.UserID,
		URL:     r.URL,
	}
	if r.Timestamp != "" {
		ms, err := strconv.ParseInt(strings.TrimSpace(r.Timestamp), 10, 64)
		if err != nil {
			return RunEvent{}, fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err)
		}
		ev.Timestamp = time.UnixMilli(ms).UTC()
	}

	if r.Event == "started" || strings.HasSuffix(r.Event, ".started") {
		ev.Kind = EventStarted
		ev.Result = StatusRunning
		return ev, nil
	}

	ev.Result = JobStatus(strings.ToUpper(r.Result))
	if !ev.Result.Terminal() {
		return RunEvent{}, fmt.Errorf("completed event for %s has invalid result %q", r.JobName, r.Result)
	}
	return ev, nil
}

// Record converts the event into a history entry.
func (e RunEvent) Record() JobRunRecord {
	return JobRunRecord{
		JobName:   e.JobName,
		Number:    e.Number,
		Timestamp: e.Timestamp,
		Host:      e.BuiltOn,
		URL:       e.URL,
		Status:    e.Result,
	}
}
