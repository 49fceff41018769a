package model

// JobStatus is the state of a job's most recent build as reported by the CI server.
type JobStatus string

const (
	StatusSuccess    JobStatus = "SUCCESS"
	StatusFailure    JobStatus = "FAILURE"
	StatusAborted    JobStatus = "ABORTED"
	StatusUnstable   JobStatus = "UNSTABLE"
	StatusRunning    JobStatus = "RUNNING"
	StatusNotStarted JobStatus = "NOT_STARTED"

	// StatusMissing means the job does not exist on the CI server.
	StatusMissing JobStatus = ""
)

// Terminal reports whether the status is a finished build result.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusAborted, StatusUnstable:
		return true
	default:
		return false
	}
}

func (s JobStatus) String() string {
	if s == StatusMissing {
		return "MISSING"
	}
	return string(s)
}

// TestCase is one entry of a build's test report.
type TestCase struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Passed reports whether the case should be left out of failure summaries.
func (t TestCase) Passed() bool {
	switch t.Status {
	case "PASSED", "SKIPPED", "FIXED":
		return true
	default:
		return false
	}
}

// Param is one name/value pair of a parameterized build.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
