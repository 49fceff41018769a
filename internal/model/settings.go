package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MaxHistory is the number of job runs remembered per user.
const MaxHistory = 10

// UserSettings is everything remembered about a single chat user.
type UserSettings struct {
	Token       string           `json:"token"`
	History     []JobRunRecord   `json:"jobs"`
	LastListing []string         `json:"last_job_listing"`
	Aliases     map[string]Alias `json:"aliases,omitempty"`
}

// DefaultSettings returns the settings of a user seen for the first time.
func DefaultSettings() UserSettings {
	return UserSettings{
		History:     []JobRunRecord{},
		LastListing: []string{},
	}
}

// Record moves run to the front of the history, dropping older entries
// of the same job and anything beyond MaxHistory.
func (s *UserSettings) Record(run JobRunRecord) {
	history := make([]JobRunRecord, 0, len(s.History)+1)
	history = append(history, run)
	for _, existing := range s.History {
		if existing.JobName != run.JobName {
			history = append(history, existing)
		}
	}
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	s.History = history
}

// HistoryJobNames returns the job names of the history, most recent first.
func (s UserSettings) HistoryJobNames() []string {
	names := make([]string, len(s.History))
	for i, run := range s.History {
		names[i] = run.JobName
	}
	return names
}

// AliasNames returns the registered alias names in ascending order.
func (s UserSettings) AliasNames() []string {
	names := make([]string, 0, len(s.Aliases))
	for name := range s.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Alias is a saved search pattern plus the parameters used to trigger its match.
type Alias struct {
	Pattern []string
	// Parameters is a raw query string; nil means "decide from the job".
	Parameters *string
}

// MarshalJSON stores aliases as a [pattern, parameters] pair.
func (a Alias) MarshalJSON() ([]byte, error) {
	pattern := a.Pattern
	if pattern == nil {
		pattern = []string{}
	}
	return json.Marshal([]any{pattern, a.Parameters})
}

func (a *Alias) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode alias: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode alias: expected [pattern, parameters], got %d elements", len(pair))
	}
	var out Alias
	if err := json.Unmarshal(pair[0], &out.Pattern); err != nil {
		return fmt.Errorf("decode alias pattern: %w", err)
	}
	if err := json.Unmarshal(pair[1], &out.Parameters); err != nil {
		return fmt.Errorf("decode alias parameters: %w", err)
	}
	*a = out
	return nil
}
