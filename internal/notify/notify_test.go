package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRocketChatNotify(t *testing.T) {
	var got postMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat.postMessage", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-Auth-Token"))
		assert.Equal(t, "bot-id", r.Header.Get("X-User-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	n := NewRocketChat(srv.URL+"/", "bot-id", "tok")
	require.NoError(t, n.Notify(context.Background(), "alice", "**Job Completed**!"))
	assert.Equal(t, postMessage{Channel: "@alice", Text: "**Job Completed**!"}, got)
}

func TestRocketChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusUnauthorized, `{"status":"error","message":"You must be logged in"}`},
		{"api error", http.StatusOK, `{"success":false,"error":"room not found"}`},
		{"garbage", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewRocketChat(srv.URL, "id", "tok").Notify(context.Background(), "alice", "hi")
			assert.Error(t, err)
		})
	}
}

func TestLogNotifier(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	require.NoError(t, LogNotifier{Log: log}.Notify(context.Background(), "alice", "hello"))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "hello", hook.LastEntry().Message)
	assert.Equal(t, "alice", hook.LastEntry().Data["user"])
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}
