package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/go-library-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Html is optional; Text is recommended as fallback.
// You can also use a template by specifying Template and Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "user_registered", "orphaned_asset"
	Data     map[string]any `json:"data,omitempty"`
}

// ErrBadJob marks a job that can never be delivered; it should be dropped, not retried.
var ErrBadJob = errors.New("bad email job")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// EnsureRecipient copies To into the template data so templates can print it.
func EnsureRecipient(job *EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// Deliver renders the job's template when it names one and sends it.
// Render and addressing problems wrap ErrBadJob.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: no recipient", ErrBadJob)
	}
	EnsureRecipient(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrBadJob, job.Template, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrBadJob)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
