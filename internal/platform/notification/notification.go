// Package notification delivers account emails. It provides template
// rendering with {{placeholder}} substitution, an SMTP sender, and an
// in-memory sender for tests.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine holds notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.Register(&Template{
		ID:      "welcome",
		Subject: "Welcome to {{site_name}}",
		Body: "Hi {{username}},\n\n" +
			"Your {{site_name}} account has been activated. You can now sign in " +
			"and book appointments.\n\n" +
			"The {{site_name}} team",
	})
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t *Template) {
	e.mu.Lock()
	e.templates[t.ID] = t
	e.mu.Unlock()
}

// Render substitutes {{key}} placeholders in the template's subject and body.
func (e *TemplateEngine) Render(id string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[id]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not registered", id)
	}

	subject, body = t.Subject, t.Body
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body, nil
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	Host string
	Port int
	From string
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Message is an email captured by the MemorySender.
type Message struct {
	To      string
	Subject string
	Body    string
}

// MemorySender records emails instead of delivering them.
type MemorySender struct {
	mu   sync.Mutex
	sent []Message
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) SendEmail(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	s.sent = append(s.sent, Message{To: to, Subject: subject, Body: body})
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the captured messages.
func (s *MemorySender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// Notifier renders and sends account emails.
type Notifier struct {
	engine   *TemplateEngine
	sender   EmailSender
	siteName string
}

func NewNotifier(sender EmailSender, siteName string) *Notifier {
	return &Notifier{
		engine:   NewTemplateEngine(),
		sender:   sender,
		siteName: siteName,
	}
}

// SendWelcome delivers the first-activation welcome email.
func (n *Notifier) SendWelcome(ctx context.Context, to, username string) error {
	subject, body, err := n.engine.Render("welcome", map[string]string{
		"site_name": n.siteName,
		"username":  username,
	})
	if err != nil {
		return err
	}
	return n.sender.SendEmail(ctx, to, subject, body)
}
