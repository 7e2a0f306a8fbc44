// Package mailer wraps the transactional-email provider's send API.
// Delivery is decoupled from persistence: callers decide whether a failed
// send aborts the operation or is reported as a secondary outcome.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suckingout/poker-nights-api/internal/config"
)

type Client struct {
	conf       *config.EmailConfig
	httpClient *http.Client
}

func NewClient(conf *config.EmailConfig) *Client {
	return &Client{
		conf: conf,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	ServiceID      string                 `json:"service_id"`
	TemplateID     string                 `json:"template_id"`
	UserID         string                 `json:"user_id"`
	TemplateParams map[string]interface{} `json:"template_params"`
}

// Send posts one templated email. No retries; every send is attempt-once.
func (c *Client) Send(ctx context.Context, templateID string, params map[string]interface{}) error {
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.conf.ServiceID,
		TemplateID:     templateID,
		UserID:         c.conf.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.conf.BaseURL+"/api/v1.0/email/send", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("c.httpClient.Do -> %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		zap.L().Warn("email send rejected",
			zap.String("template", templateID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))

		return fmt.Errorf("email send failed: status %d", resp.StatusCode)
	}

	return nil
}

// SendEventInvitation notifies one invitee about an event.
func (c *Client) SendEventInvitation(ctx context.Context, email, title, date, location string, buyInCents int64, eventLink, replyTo string) error {
	return c.Send(ctx, c.conf.Templates.EventInvite, map[string]interface{}{
		"to_email":       email,
		"event_title":    title,
		"event_date":     date,
		"event_location": location,
		"event_buyin":    float64(buyInCents) / 100,
		"event_link":     eventLink,
		"reply_to":       replyTo,
	})
}

// SendGroupInvitation notifies one invitee about a group.
func (c *Client) SendGroupInvitation(ctx context.Context, email, groupName, inviterName, groupLink, replyTo string) error {
	return c.Send(ctx, c.conf.Templates.GroupInvite, map[string]interface{}{
		"to_email":     email,
		"group_name":   groupName,
		"inviter_name": inviterName,
		"group_link":   groupLink,
		"reply_to":     replyTo,
	})
}

// SendCancellations fans one cancellation notice out to every recipient in
// parallel. Any failed send fails the whole call so the caller can keep the
// event alive.
func (c *Client) SendCancellations(ctx context.Context, emails []string, title, date, location string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, email := range emails {
		email := email
		g.Go(func() error {
			return c.Send(ctx, c.conf.Templates.Cancellation, map[string]interface{}{
				"to_email":       email,
				"event_title":    title,
				"event_date":     date,
				"event_location": location,
				"reply_to":       c.conf.ReplyTo,
			})
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("mailer.SendCancellations -> %w", err)
	}

	return nil
}
