package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/cablecom/leads-api/internal/entity"
	"github.com/cablecom/leads-api/internal/infra/metrics"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/lead_notification.html"))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/lead_notification.txt"))
)

const (
	FromName     = "Cable-Com Services"
	DashboardURL = "https://cable-comservices.com/admin"
)

// Sender is the slice of *gomail.Dialer the notifier needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

func (s *EmailSender) Dialer() *gomail.Dialer {
	return gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
}

// NotificationError is a failed delivery. It is logged and counted, never
// returned to an HTTP caller.
type NotificationError struct {
	LeadID int64
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("lead %d notification: %v", e.LeadID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

type Result struct {
	Success bool
	Err     error
}

// LeadNotifier renders a lead and mails it to the staff inbox.
type LeadNotifier struct {
	Sender  Sender
	From    string
	To      string
	Timeout time.Duration
	Log     *zap.Logger

	now func() time.Time
}

func NewLeadNotifier(sender Sender, from, to string, timeout time.Duration, log *zap.Logger) *LeadNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadNotifier{Sender: sender, From: from, To: to, Timeout: timeout, Log: log, now: time.Now}
}

// SendLeadNotification never panics and never returns an error value; the
// outcome is reported through Result. The send is abandoned when ctx ends or
// the timeout elapses.
func (n *LeadNotifier) SendLeadNotification(ctx context.Context, lead entity.Lead) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: &NotificationError{LeadID: lead.ID, Err: fmt.Errorf("panic: %v", r)}}
		}
		if res.Success {
			n.Log.Info("lead notification sent", zap.Int64("lead_id", lead.ID), zap.String("to", n.To))
		} else {
			n.Log.Error("lead notification failed", zap.Int64("lead_id", lead.ID), zap.Error(res.Err))
		}
		metrics.RecordNotification("smtp", res.Success)
	}()

	msg, err := n.BuildMessage(lead)
	if err != nil {
		return Result{Err: &NotificationError{LeadID: lead.ID, Err: err}}
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	// gomail has no context support; the dial keeps running in the background
	// after a timeout, but the caller is released.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- n.Sender.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return Result{Err: &NotificationError{LeadID: lead.ID, Err: err}}
		}
		return Result{Success: true}
	case <-ctx.Done():
		return Result{Err: &NotificationError{LeadID: lead.ID, Err: ctx.Err()}}
	}
}

// BuildMessage renders the HTML and plain text bodies for lead.
func (n *LeadNotifier) BuildMessage(lead entity.Lead) (*gomail.Message, error) {
	if n.To == "" {
		return nil, errors.New("notification recipient not configured")
	}

	data := n.emailData(lead)

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.From, FromName)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", fmt.Sprintf("New Lead: %s - %s", lead.Name, lead.Service))
	m.SetBody("text/plain", text.String())
	m.AddAlternative("text/html", html.String())
	return m, nil
}

func (n *LeadNotifier) emailData(lead entity.Lead) LeadEmailData {
	id := "Pending"
	if lead.ID > 0 {
		id = strconv.FormatInt(lead.ID, 10)
	}
	now := time.Now
	if n.now != nil {
		now = n.now
	}
	return LeadEmailData{
		LeadID:       id,
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Company:      lead.Company,
		Service:      entity.ServiceLabel(lead.Service),
		ProjectType:  optionalLabel(lead.ProjectType, entity.ProjectTypeLabel),
		Timeline:     optionalLabel(lead.Timeline, entity.TimelineLabel),
		Budget:       optionalLabel(lead.Budget, entity.BudgetLabel),
		Message:      lead.Message,
		Received:     now().Format("Jan 2, 2006 3:04 PM MST"),
		DashboardURL: DashboardURL,
	}
}

func optionalLabel(slug string, label func(string) string) string {
	if slug == "" {
		return ""
	}
	return label(slug)
}
