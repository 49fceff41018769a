package alias

import (
	"context"
	"errors"
	"testing"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/jenkins-bot/internal/ci/citest"
	"github.com/altinukshini/jenkins-bot/internal/filter"
	"github.com/altinukshini/jenkins-bot/internal/session"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	provider := citest.New(map[string]citest.Job{
		"eden-rocky30-linux64":   {},
		"eden-rocky30-win64":     {},
		"eden-master-linux64":    {},
		"etk-master-linux64-py3": {},
	})
	return NewResolver(session.NewRepository(session.NewMemoryStore(), log), provider, filter.New())
}

func strPtr(s string) *string { return &s }

func TestResolveSingleMatch(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "r30l", []string{"rocky30", "linux64"}, strPtr("BUILD_MODE=source")))

	got, err := r.Resolve(ctx, "alice", "r30l", nil)
	require.NoError(t, err)
	assert.Equal(t, "eden-rocky30-linux64", got.Job)
	require.NotNil(t, got.Parameters)
	assert.Equal(t, "BUILD_MODE=source", *got.Parameters)
}

func TestResolveExtraFactorsNarrow(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "r30", []string{"rocky30"}, nil))

	got, err := r.Resolve(ctx, "alice", "r30", []string{"win64"})
	require.NoError(t, err)
	assert.Equal(t, "eden-rocky30-win64", got.Job)
	assert.Nil(t, got.Parameters)
}

func TestResolveAmbiguous(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "l", []string{"linux64"}, nil))

	_, err := r.Resolve(ctx, "alice", "l", nil)
	var ambiguous *AmbiguousError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"eden-master-linux64", "eden-rocky30-linux64", "etk-master-linux64-py3"}, ambiguous.Candidates)
}

func TestResolveNoMatch(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "x", []string{"solaris"}, nil))

	_, err := r.Resolve(ctx, "alice", "x", []string{"sparc"})
	var noMatch *NoMatchError
	require.True(t, errors.As(err, &noMatch))
	assert.Equal(t, []string{"solaris", "sparc"}, noMatch.Pattern)
}

func TestResolveUnknown(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve(context.Background(), "alice", "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownAlias)
}

func TestRegisterOverwrites(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "a", []string{"rocky30", "win64"}, strPtr("OLD=1")))
	require.NoError(t, r.Register(ctx, "alice", "a", []string{"master", "linux64", "eden"}, nil))

	list, err := r.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := r.Resolve(ctx, "alice", "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "eden-master-linux64", got.Job)
	assert.Nil(t, got.Parameters)
}

func TestListSortedAndPerUser(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Register(ctx, "alice", "zeta", []string{"z"}, nil))
	require.NoError(t, r.Register(ctx, "alice", "alpha", []string{"a"}, nil))
	require.NoError(t, r.Register(ctx, "bob", "mine", []string{"m"}, nil))

	list, err := r.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)

	empty, err := r.List(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	err := newResolver(t).Register(context.Background(), "alice", "", []string{"x"}, nil)
	require.ErrorIs(t, err, ErrEmptyName)
	var eb *errbuilder.ErrBuilder
	assert.True(t, errors.As(err, &eb))
}
