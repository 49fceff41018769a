package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/jenkins-bot/internal/ci/citest"
	"github.com/altinukshini/jenkins-bot/internal/filter"
	"github.com/altinukshini/jenkins-bot/internal/model"
)

func TestFindSortsAndAnnotates(t *testing.T) {
	provider := citest.New(map[string]citest.Job{
		"eden-master-win64":   {Status: model.StatusFailure},
		"eden-master-linux64": {Status: model.StatusSuccess},
		"etk-master-win64":    {Status: model.StatusRunning},
	})
	l := New(provider, filter.New())

	got, err := l.Find(context.Background(), []string{"eden"})
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Job: "eden-master-linux64", Status: model.StatusSuccess},
		{Job: "eden-master-win64", Status: model.StatusFailure},
	}, got)
	assert.Equal(t, []string{"eden-master-linux64", "eden-master-win64"}, Jobs(got))
}

func TestFindNoMatch(t *testing.T) {
	l := New(citest.New(map[string]citest.Job{"a-b": {}}), filter.New())
	got, err := l.Find(context.Background(), []string{"zzz"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindOverCapSkipsStatusLookups(t *testing.T) {
	jobs := map[string]citest.Job{}
	for i := 0; i < 21; i++ {
		jobs[fmt.Sprintf("eden-job%02d", i)] = citest.Job{}
	}
	provider := citest.New(jobs)
	l := New(provider, filter.New())

	_, err := l.Find(context.Background(), []string{"eden"})
	var tooMany *TooManyError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 21, tooMany.Count)
	assert.Equal(t, DefaultMaxResults, tooMany.Max)
	assert.Zero(t, provider.Calls("Status"))

	l = New(provider, filter.New(), WithMaxResults(30))
	got, err := l.Find(context.Background(), []string{"eden"})
	require.NoError(t, err)
	assert.Len(t, got, 21)
	assert.Equal(t, 21, provider.Calls("Status"))
}

func TestAnnotateKeepsOrder(t *testing.T) {
	jobs := map[string]citest.Job{}
	var names []string
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("job-%02d", 14-i)
		jobs[name] = citest.Job{Status: model.StatusSuccess}
		names = append(names, name)
	}
	l := New(citest.New(jobs), filter.New(), WithConcurrency(3))

	got, err := l.Annotate(context.Background(), names)
	require.NoError(t, err)
	assert.Equal(t, names, Jobs(got))
}

func TestAnnotatePropagatesErrors(t *testing.T) {
	provider := citest.New(map[string]citest.Job{"a": {}})
	provider.StatusErr = errors.New("connection refused")
	l := New(provider, filter.New())

	_, err := l.Annotate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, provider.StatusErr)
}
