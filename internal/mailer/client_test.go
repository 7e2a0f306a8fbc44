package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suckingout/poker-nights-api/internal/config"
)

func testConfig(baseURL string) *config.EmailConfig {
	return &config.EmailConfig{
		BaseURL:   baseURL,
		ServiceID: "service_test",
		PublicKey: "public_test",
		ReplyTo:   "noreply@example.com",
		Templates: config.EmailTemplates{
			EventInvite:  "template_event",
			GroupInvite:  "template_group",
			Cancellation: "template_cancel",
		},
	}
}

func TestClient_SendEventInvitation(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.SendEventInvitation(context.Background(), "friend@example.com", "Friday Night Poker",
		"Friday, June 6, 2025 at 7:00 PM", "Dave's place", 2000, "http://localhost/#/event/1", "owner@example.com")
	require.NoError(t, err)

	assert.Equal(t, "service_test", got.ServiceID)
	assert.Equal(t, "template_event", got.TemplateID)
	assert.Equal(t, "public_test", got.UserID)
	assert.Equal(t, "friend@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "Friday Night Poker", got.TemplateParams["event_title"])
	assert.Equal(t, 20.0, got.TemplateParams["event_buyin"], "buy-in is rendered in whole currency units")
	assert.Equal(t, "owner@example.com", got.TemplateParams["reply_to"])
}

func TestClient_SendGroupInvitation(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.SendGroupInvitation(context.Background(), "friend@example.com", "Thursday Regulars",
		"Owner", "http://localhost/#/group/1", "owner@example.com")
	require.NoError(t, err)

	assert.Equal(t, "template_group", got.TemplateID)
	assert.Equal(t, "Thursday Regulars", got.TemplateParams["group_name"])
	assert.Equal(t, "Owner", got.TemplateParams["inviter_name"])
}

func TestClient_Send_RejectedByProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad template", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.Send(context.Background(), "template_event", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestClient_SendCancellations(t *testing.T) {
	var (
		mu         sync.Mutex
		recipients []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		recipients = append(recipients, req.TemplateParams["to_email"].(string))
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	err := client.SendCancellations(context.Background(), emails, "Friday Night Poker",
		"Friday, June 6, 2025 at 7:00 PM", "Dave's place")
	require.NoError(t, err)

	assert.ElementsMatch(t, emails, recipients)
}

func TestClient_SendCancellations_OneFailureFailsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.TemplateParams["to_email"] == "b@example.com" {
			http.Error(w, "mailbox unavailable", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	err := client.SendCancellations(context.Background(), []string{"a@example.com", "b@example.com"},
		"Friday Night Poker", "date", "location")
	assert.Error(t, err)
}
