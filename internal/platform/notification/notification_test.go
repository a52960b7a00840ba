package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("welcome", map[string]string{
		"site_name": "ClinicDesk",
		"username":  "asmith",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Welcome to ClinicDesk" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "Hi asmith,") {
		t.Errorf("body missing username: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("unreplaced placeholder in body: %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestNotifier_SendWelcome(t *testing.T) {
	sender := NewMemorySender()
	n := NewNotifier(sender, "ClinicDesk")

	if err := n.SendWelcome(context.Background(), "amy@example.com", "amy"); err != nil {
		t.Fatalf("send welcome: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].To != "amy@example.com" {
		t.Errorf("unexpected recipient: %s", sent[0].To)
	}
	if !strings.Contains(sent[0].Body, "amy") {
		t.Errorf("body missing username: %q", sent[0].Body)
	}
}
