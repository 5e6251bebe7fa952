package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abiagrow/connect-backend/pkg/config"
	pkgerrors "github.com/abiagrow/connect-backend/pkg/errors"
	"github.com/abiagrow/connect-backend/pkg/logger"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	client, err := NewClient(config.MailConfig{
		SendgridAPIKey: "SG.test",
		DefaultFrom:    "no-reply@abiagrow.example",
		SiteName:       "Abiagrow Connect",
		BaseURL:        "https://connect.abiagrow.example/",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if endpoint != "" {
		client.endpoint = endpoint
	}
	return client
}

func TestSendPostsSendgridPayload(t *testing.T) {
	var captured sendgridPayload
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Send(context.Background(), Message{
		To:       "farmer@example.com",
		Subject:  "Hello",
		TextBody: "plain",
		HTMLBody: "<p>rich</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if authHeader != "Bearer SG.test" {
		t.Fatalf("unexpected auth header %q", authHeader)
	}
	if len(captured.Personalizations) != 1 || captured.Personalizations[0].To[0].Email != "farmer@example.com" {
		t.Fatalf("unexpected personalizations %+v", captured.Personalizations)
	}
	if captured.From.Email != "no-reply@abiagrow.example" {
		t.Fatalf("unexpected from %+v", captured.From)
	}
	if len(captured.Content) != 2 {
		t.Fatalf("expected plain and html content, got %+v", captured.Content)
	}
}

func TestSendMapsFailureToDeliveryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Send(context.Background(), Message{
		To:       "farmer@example.com",
		Subject:  "Hello",
		TextBody: "plain",
	})
	if err == nil {
		t.Fatal("expected delivery error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDelivery {
		t.Fatalf("expected delivery code, got %v", err)
	}
}

func TestSendValidatesMessage(t *testing.T) {
	client := newTestClient(t, "")

	cases := []Message{
		{Subject: "s", TextBody: "b"},
		{To: "a@b.c", TextBody: "b"},
		{To: "a@b.c", Subject: "s"},
	}
	for _, msg := range cases {
		err := client.Send(context.Background(), msg)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", msg, err)
		}
	}
}

func TestVerificationEmailLinksToken(t *testing.T) {
	client := newTestClient(t, "")
	msg := client.VerificationEmail("farmer@example.com", "tok-123")
	if msg.To != "farmer@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	want := "https://connect.abiagrow.example/verify-email/tok-123"
	if !strings.Contains(msg.TextBody, want) || !strings.Contains(msg.HTMLBody, want) {
		t.Fatalf("verification link missing from message: %q", msg.TextBody)
	}
}
