package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/jenkins-bot/internal/ci"
	"github.com/altinukshini/jenkins-bot/internal/ci/citest"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

var lastValues = []model.Param{
	{Name: "BUILD_MODE", Value: "source"},
	{Name: "EDEN_SKIP_DEPS_TESTS", Value: "etk"},
}

func fakeJobs() map[string]citest.Job {
	return map[string]citest.Job{
		"plain-new":   {},
		"plain-built": {Builds: []int{2, 1}},
		"param-new":   {Parameters: []string{"BUILD_MODE"}},
		"param-built": {Builds: []int{7}, Parameters: []string{"BUILD_MODE", "EDEN_SKIP_DEPS_TESTS"}, LastValues: lastValues},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		job  string
		want model.TriggerPlan
	}{
		{"never built without parameters", "plain-new", model.TriggerPlan{Job: "plain-new", Kind: model.EndpointBuild}},
		{"built without parameters", "plain-built", model.TriggerPlan{Job: "plain-built", Kind: model.EndpointBuild}},
		{"never built with parameters", "param-new", model.TriggerPlan{Job: "param-new", Kind: model.EndpointBuildWithParameters}},
		{"built with parameters replays last values", "param-built", model.TriggerPlan{Job: "param-built", Kind: model.EndpointBuildWithParameters, Params: lastValues}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(citest.New(fakeJobs()), quietLogger())
			got, err := engine.Decide(context.Background(), tt.job, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideExplicitSkipsLookups(t *testing.T) {
	provider := citest.New(fakeJobs())
	engine := New(provider, quietLogger())
	raw := "BUILD_MODE=source&EDEN_SKIP_DEPS_TESTS=etk"

	got, err := engine.Decide(context.Background(), "param-built", &raw)
	require.NoError(t, err)
	assert.Equal(t, model.EndpointBuildWithParameters, got.Kind)
	require.NotNil(t, got.Raw)
	assert.Equal(t, raw, *got.Raw)
	assert.Equal(t, raw, got.Query())
	assert.Zero(t, provider.Calls("BuildNumbers"))
	assert.Zero(t, provider.Calls("ParameterNames"))
}

func TestDecideExplicitEmptyString(t *testing.T) {
	engine := New(citest.New(fakeJobs()), quietLogger())
	empty := ""
	got, err := engine.Decide(context.Background(), "plain-new", &empty)
	require.NoError(t, err)
	assert.Equal(t, model.EndpointBuildWithParameters, got.Kind)
	assert.Empty(t, got.Query())
}

func TestTriggerWithoutTokenFailsFast(t *testing.T) {
	provider := citest.New(fakeJobs())
	engine := New(provider, quietLogger())

	_, err := engine.Trigger(context.Background(), "param-built", nil, ci.Credentials{User: "alice"})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, provider.Calls("BuildNumbers"))
	assert.Zero(t, provider.Calls("Trigger"))

	err = engine.Execute(context.Background(), model.TriggerPlan{Job: "plain-new"}, ci.Credentials{User: "alice"})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, provider.Calls("Trigger"))
}

func TestTriggerSendsPlan(t *testing.T) {
	provider := citest.New(fakeJobs())
	engine := New(provider, quietLogger())
	creds := ci.Credentials{User: "alice", Token: "tok"}

	plan, err := engine.Trigger(context.Background(), "param-built", nil, creds)
	require.NoError(t, err)

	triggered := provider.Triggered()
	require.Len(t, triggered, 1)
	assert.Equal(t, plan, triggered[0].Plan)
	assert.Equal(t, creds, triggered[0].Creds)
	assert.Equal(t, "BUILD_MODE=source&EDEN_SKIP_DEPS_TESTS=etk", triggered[0].Plan.Query())
}

func TestTriggerPropagatesUpstreamError(t *testing.T) {
	provider := citest.New(fakeJobs())
	provider.TriggerErr = map[string]error{
		"plain-new": &ci.ResponseError{Context: "POST job/plain-new/build", StatusCode: 500, Body: "oops"},
	}
	engine := New(provider, quietLogger())

	_, err := engine.Trigger(context.Background(), "plain-new", nil, ci.Credentials{User: "alice", Token: "tok"})
	var respErr *ci.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, 500, respErr.StatusCode)
}

func TestExecuteIgnoresCancellation(t *testing.T) {
	provider := citest.New(fakeJobs())
	engine := New(provider, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Execute(ctx, model.TriggerPlan{Job: "plain-new"}, ci.Credentials{User: "alice", Token: "tok"})
	require.NoError(t, err)
	assert.Len(t, provider.Triggered(), 1)
}
