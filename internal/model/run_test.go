package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRunEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawRunEvent
		want    RunEvent
		wantErr bool
	}{
		{
			name: "started",
			raw: RawRunEvent{
				JobName:   "fett-master-linux",
				Number:    "2",
				Timestamp: "1508516240981",
				BuiltOn:   "ci01",
				Event:     "jenkins.job.started",
				UserID:    "prusse",
				URL:       "job/fett-master-linux/2/",
			},
			want: RunEvent{
				Kind:      EventStarted,
				JobName:   "fett-master-linux",
				Number:    2,
				Timestamp: time.UnixMilli(1508516240981).UTC(),
				BuiltOn:   "ci01",
				UserID:    "prusse",
				URL:       "job/fett-master-linux/2/",
				Result:    StatusRunning,
			},
		},
		{
			name: "completed",
			raw:  RawRunEvent{JobName: "etk", Number: "7", Event: "jenkins.job.completed", UserID: "u", Result: "failure"},
			want: RunEvent{Kind: EventCompleted, JobName: "etk", Number: 7, UserID: "u", Result: StatusFailure},
		},
		{
			name:    "missing job",
			raw:     RawRunEvent{Number: "1", UserID: "u", Event: "started"},
			wantErr: true,
		},
		{
			name:    "missing user",
			raw:     RawRunEvent{JobName: "a", Number: "1", Event: "started"},
			wantErr: true,
		},
		{
			name:    "bad number",
			raw:     RawRunEvent{JobName: "a", Number: "x", UserID: "u", Event: "started"},
			wantErr: true,
		},
		{
			name:    "completed without result",
			raw:     RawRunEvent{JobName: "a", Number: "1", UserID: "u", Event: "jenkins.job.completed"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.raw.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriggerPlanQuery(t *testing.T) {
	plan := TriggerPlan{
		Kind:   EndpointBuildWithParameters,
		Params: []Param{{Name: "ZETA", Value: "a b"}, {Name: "ALPHA", Value: "x&y"}},
	}
	assert.Equal(t, "ZETA=a+b&ALPHA=x%26y", plan.Query())

	raw := "BUILD_MODE=source&EDEN_SKIP_DEPS_TESTS=etk"
	plan.Raw = &raw
	assert.Equal(t, raw, plan.Query())
}
