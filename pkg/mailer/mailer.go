// Package mailer sends transactional email through the SendGrid v3 REST API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abiagrow/connect-backend/pkg/config"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
)

const defaultEndpoint = "https://api.sendgrid.com/v3/mail/send"

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("mail default from address is required")
	errLoggerRequired = errors.New("mailer logger is required")
)

// Sender is the delivery surface consumed by services.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Client wraps the SendGrid mail-send endpoint with auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	from       string
	siteName   string
	baseURL    string
	logger     *logger.Logger
}

// NewClient validates the mail configuration and returns a ready client.
func NewClient(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.SendgridAPIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errFromRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		from:       from,
		siteName:   strings.TrimSpace(cfg.SiteName),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:     logg,
	}, nil
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

// Send delivers the message. Failures surface as delivery errors rather than
// being swallowed, so callers decide whether a send is fatal.
func (c *Client) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email subject is required")
	}

	content := []sendgridContent{}
	if msg.TextBody != "" {
		content = append(content, sendgridContent{Type: "text/plain", Value: msg.TextBody})
	}
	if msg.HTMLBody != "" {
		content = append(content, sendgridContent{Type: "text/html", Value: msg.HTMLBody})
	}
	if len(content) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "email body is required")
	}

	payload := sendgridPayload{
		Personalizations: []sendgridPersonalization{{To: []sendgridAddress{{Email: to}}}},
		From:             sendgridAddress{Email: c.from, Name: c.siteName},
		Subject:          msg.Subject,
		Content:          content,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.log(ctx, "request", to, msg.Subject, 0)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDelivery, err, "sending email")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log(ctx, "error", to, msg.Subject, resp.StatusCode)
		return pkgerrors.New(
			pkgerrors.CodeDelivery,
			fmt.Sprintf("sendgrid returned status %d", resp.StatusCode),
		).WithDetails(map[string]any{"response": strings.TrimSpace(string(detail))})
	}

	c.log(ctx, "sent", to, msg.Subject, resp.StatusCode)
	return nil
}

// VerificationEmail builds the account verification message for the given token.
func (c *Client) VerificationEmail(to, token string) Message {
	link := fmt.Sprintf("%s/verify-email/%s", c.baseURL, token)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Verify your %s account", c.siteName),
		TextBody: fmt.Sprintf(
			"Welcome to %s. Confirm your email address by visiting %s",
			c.siteName, link,
		),
		HTMLBody: fmt.Sprintf(
			`<p>Welcome to %s.</p><p><a href="%s">Confirm your email address</a> to activate your account.</p>`,
			c.siteName, link,
		),
	}
}

// WelcomeEmail builds the post-verification welcome message.
func (c *Client) WelcomeEmail(to string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to %s", c.siteName),
		TextBody: fmt.Sprintf(
			"Your %s account is verified. You can now sign in and start trading.",
			c.siteName,
		),
		HTMLBody: fmt.Sprintf(
			"<p>Your %s account is verified. You can now sign in and start trading.</p>",
			c.siteName,
		),
	}
}

func (c *Client) log(ctx context.Context, phase, to, subject string, status int) {
	if c.logger == nil {
		return
	}
	fields := map[string]any{
		"phase":   phase,
		"to":      to,
		"subject": subject,
	}
	if status != 0 {
		fields["status"] = status
	}
	c.logger.Info(c.logger.WithFields(ctx, fields), "mailer")
}
