package actions

import "testing"

func TestRunsFilterQueryString(t *testing.T) {
	tests := []struct {
		name   string
		filter RunsFilter
		want   string
	}{
		{
			name:   "empty filter",
			filter: RunsFilter{},
			want:   "?per_page=30",
		},
		{
			name:   "latest run",
			filter: RunsFilter{PerPage: 1},
			want:   "?per_page=1",
		},
		{
			name:   "branch and page",
			filter: RunsFilter{Branch: "main", PerPage: 100, Page: 2},
			want:   "?branch=main&page=2&per_page=100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.QueryString()
			if got != tt.want {
				t.Errorf("QueryString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJobFailed(t *testing.T) {
	tests := []struct {
		conclusion string
		want       bool
	}{
		{"success", false},
		{"skipped", false},
		{"neutral", false},
		{"", false},
		{"failure", true},
		{"cancelled", true},
		{"timed_out", true},
	}
	for _, tt := range tests {
		if got := jobFailed(Job{Conclusion: tt.conclusion}); got != tt.want {
			t.Errorf("jobFailed(%q) = %v, want %v", tt.conclusion, got, tt.want)
		}
	}
}
