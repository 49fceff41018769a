// Package notify delivers bot messages to users outside of a command reply.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier sends a direct message to a chat user.
type Notifier interface {
	Notify(ctx context.Context, user, text string) error
}

// LogNotifier writes messages to the log. Used when no chat server is configured.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) Notify(_ context.Context, user, text string) error {
	log := n.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("user", user).Info(text)
	return nil
}

// RocketChat posts direct messages through the Rocket.Chat REST API.
type RocketChat struct {
	http    *http.Client
	baseURL string
	userID  string
	token   string
}

func NewRocketChat(baseURL, userID, token string) *RocketChat {
	return &RocketChat{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		userID:  userID,
		token:   token,
	}
}

type postMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (r *RocketChat) Notify(ctx context.Context, user, text string) error {
	body, err := json.Marshal(postMessage{Channel: "@" + user, Text: text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", r.token)
	req.Header.Set("X-User-Id", r.userID)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("post message to %s: %w", user, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post message to %s: HTTP %d: %s", user, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var result postResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("post message to %s: %s", user, result.Error)
	}
	return nil
}
