package ops

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/ci/citest"
	"github.com/altinukshini/jenkins-bot/internal/trigger"
)

func TestSelectJobs(t *testing.T) {
	listing := []string{"a", "b", "c"}

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{name: "single", args: []string{"1"}, want: []string{"b"}},
		{name: "keeps given order", args: []string{"2", "0"}, want: []string{"c", "a"}},
		{name: "duplicates once", args: []string{"0", "0"}, want: []string{"a"}},
		{name: "past the end", args: []string{"3"}, wantErr: true},
		{name: "negative", args: []string{"-1"}, wantErr: true},
		{name: "not a number", args: []string{"x"}, wantErr: true},
		{name: "one bad index rejects all", args: []string{"0", "7"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectJobs(listing, tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIndex) {
					t.Fatalf("SelectJobs() error = %v, want ErrInvalidIndex", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectJobs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SelectJobs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SelectJobs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func newEngine(p ci.Provider) *trigger.Engine {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return trigger.New(p, log)
}

func TestBulkTrigger(t *testing.T) {
	provider := citest.New(map[string]citest.Job{"a": {}, "b": {}, "c": {}})
	provider.TriggerErr = map[string]error{"b": &ci.ResponseError{StatusCode: 500}}
	creds := ci.Credentials{User: "alice", Token: "tok"}

	var progress []int
	result, err := BulkTrigger(context.Background(), newEngine(provider), []string{"a", "b", "c"}, nil, creds, func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		progress = append(progress, done)
	})
	if err != nil {
		t.Fatalf("BulkTrigger() error = %v", err)
	}
	if result.Completed != 2 || result.Failed != 1 {
		t.Errorf("Completed/Failed = %d/%d, want 2/1", result.Completed, result.Failed)
	}
	if len(result.Triggered) != 2 || result.Triggered[0] != "a" || result.Triggered[1] != "c" {
		t.Errorf("Triggered = %v, want [a c]", result.Triggered)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestBulkTriggerStopsWithoutToken(t *testing.T) {
	provider := citest.New(map[string]citest.Job{"a": {}, "b": {}})
	_, err := BulkTrigger(context.Background(), newEngine(provider), []string{"a", "b"}, nil, ci.Credentials{User: "alice"}, nil)
	if !errors.Is(err, trigger.ErrMissingToken) {
		t.Fatalf("BulkTrigger() error = %v, want ErrMissingToken", err)
	}
	if n := provider.Calls("Trigger"); n != 0 {
		t.Errorf("Trigger called %d times", n)
	}
}

func TestBulkTriggerCancelled(t *testing.T) {
	provider := citest.New(map[string]citest.Job{"a": {}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := BulkTrigger(ctx, newEngine(provider), []string{"a"}, nil, ci.Credentials{User: "alice", Token: "tok"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("BulkTrigger() error = %v, want context.Canceled", err)
	}
	if result.Completed != 0 {
		t.Errorf("Completed = %d, want 0", result.Completed)
	}
}
