package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

type fakeBot struct {
	mu       sync.Mutex
	events   []model.RunEvent
	commands []string
	eventErr error
}

func (f *fakeBot) Dispatch(_ context.Context, user, line string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, user+": "+line)
	return "reply to " + line
}

func (f *fakeBot) HandleEvent(_ context.Context, ev model.RunEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.eventErr
}

func newTestServer(bot *fakeBot, opts ...Option) *Server {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(bot, append([]Option{WithLogger(log)}, opts...)...)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(&fakeBot{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestJenkinsWebhookForm(t *testing.T) {
	bot := &fakeBot{}
	form := url.Values{
		"number":    {"2"},
		"job_name":  {"fett-master-execute_cmd"},
		"timestamp": {"1508516240981"},
		"builtOn":   {"ci01"},
		"event":     {"jenkins.job.started"},
		"userId":    {"prusse"},
		"url":       {"job/fett-master-execute_cmd/2/"},
	}
	req := httptest.NewRequest(http.MethodPost, "/jenkins", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(newTestServer(bot), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	require.Len(t, bot.events, 1)
	ev := bot.events[0]
	assert.Equal(t, model.EventStarted, ev.Kind)
	assert.Equal(t, "prusse", ev.UserID)
	assert.Equal(t, 2, ev.Number)
	assert.Equal(t, int64(1508516240981), ev.Timestamp.UnixMilli())
}

func TestJenkinsWebhookJSON(t *testing.T) {
	bot := &fakeBot{}
	body := `{"job_name":"a","number":"5","event":"jenkins.job.completed","userId":"alice","result":"FAILURE"}`
	req := httptest.NewRequest(http.MethodPost, "/jenkins", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := serve(newTestServer(bot), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, bot.events, 1)
	assert.Equal(t, model.EventCompleted, bot.events[0].Kind)
	assert.Equal(t, model.StatusFailure, bot.events[0].Result)
}

func TestJenkinsWebhookRejectsInvalid(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"missing user", "application/x-www-form-urlencoded", "job_name=a&number=1&event=jenkins.job.started"},
		{"bad number", "application/x-www-form-urlencoded", "job_name=a&number=x&userId=u&event=jenkins.job.started"},
		{"no result", "application/x-www-form-urlencoded", "job_name=a&number=1&userId=u&event=jenkins.job.completed"},
		{"bad json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{}
			req := httptest.NewRequest(http.MethodPost, "/jenkins", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			rec := serve(newTestServer(bot), req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, bot.events)
		})
	}
}

func TestJenkinsWebhookHandlerError(t *testing.T) {
	bot := &fakeBot{eventErr: errors.New("chat down")}
	req := httptest.NewRequest(http.MethodPost, "/jenkins", strings.NewReader("job_name=a&number=1&userId=u&event=jenkins.job.started"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(newTestServer(bot), req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCommand(t *testing.T) {
	bot := &fakeBot{}
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"user":"alice","text":"!find eden"}`))

	rec := serve(newTestServer(bot), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"reply to !find eden"}`, rec.Body.String())
	assert.Equal(t, []string{"alice: !find eden"}, bot.commands)
}

func TestCommandValidation(t *testing.T) {
	s := newTestServer(&fakeBot{}, WithSecret("s3cret"))

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"user":"alice","text":"help"}`))
	assert.Equal(t, http.StatusForbidden, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"text":"help"}`))
	req.Header.Set("X-Bot-Secret", "s3cret")
	assert.Equal(t, http.StatusBadRequest, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"user":"alice","text":"help"}`))
	req.Header.Set("X-Bot-Secret", "s3cret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)
}
