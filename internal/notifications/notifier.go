package notifications

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/logging"
	"github.com/alumnet/alumni-backend/internal/queue"
	"github.com/hibiken/asynq"
)

// queueService is the subset of TaskQueue the notifier needs.
type queueService interface {
	Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error)
}

// Notifier emails profile owners about resolved approval decisions.
// It satisfies approval.DecisionNotifier: failures are logged, never
// surfaced, because the state transition has already happened.
type Notifier struct {
	queue     queueService
	templates *template.Template
}

func NewNotifier(q queueService) (*Notifier, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Notifier{queue: q, templates: tmpl}, nil
}

func (n *Notifier) DecisionResolved(ctx context.Context, profile approval.Profile, action approval.Action) {
	name := "profile_approved"
	if action == approval.ActionReject {
		name = "profile_rejected"
	}

	subject, body, err := n.render(name, map[string]interface{}{
		"Name":           profile.Name,
		"GraduationYear": profile.GraduationYear,
	})
	if err != nil {
		logging.Error("failed to render decision email", "template", name, "error", err)
		return
	}

	if _, err := n.queue.Enqueue(queue.TypeEmailDelivery, queue.EmailDeliveryPayload{
		To:      profile.Email,
		Subject: subject,
		Body:    body,
	}); err != nil {
		logging.Error("failed to enqueue decision email",
			"to", profile.Email,
			"template", name,
			"error", err)
	}
}

func (n *Notifier) render(name string, data map[string]interface{}) (subject, body string, err error) {
	var subjectBuf bytes.Buffer
	if err = n.templates.ExecuteTemplate(&subjectBuf, name+":subject", data); err != nil {
		return "", "", fmt.Errorf("render subject for %q: %w", name, err)
	}

	var bodyBuf bytes.Buffer
	if err = n.templates.ExecuteTemplate(&bodyBuf, name+":body", data); err != nil {
		return "", "", fmt.Errorf("render body for %q: %w", name, err)
	}

	return subjectBuf.String(), bodyBuf.String(), nil
}
