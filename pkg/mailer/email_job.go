package mailer

import (
	"fmt"

	mailtpl "github.com/oksasatya/library-catalog/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered with Data) or Subject plus Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// NewWelcomeJob builds the job sent after a successful registration.
func NewWelcomeJob(appName, name, email string) EmailJob {
	return EmailJob{
		To:       email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(appName, name, email),
	}
}

// ensureRecipient fills Email from To when the producer left it out.
func (j *EmailJob) ensureRecipient() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		j.Data["Email"] = j.To
	}
}

// Render resolves the final subject and bodies.
func (j *EmailJob) Render() (subject, text, html string, err error) {
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	j.ensureRecipient()
	return mailtpl.Render(j.Template, j.Data)
}
