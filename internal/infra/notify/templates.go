package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	TemplateConfirmation  = "appointment_confirmation"
	TemplateStatusChanged = "appointment_status_changed"
	TemplateRescheduled   = "appointment_rescheduled"
	TemplateReminder      = "appointment_reminder"
	TemplateReplyAck      = "reply_ack"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(name + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[string]messageTemplate{
	TemplateConfirmation: mustTemplate(TemplateConfirmation,
		`Votre rendez-vous {{.ServiceName}} est enregistré`,
		`Bonjour {{.ClientName}},

Votre rendez-vous {{.ServiceName}} du {{.Start}} est enregistré ({{.Status}}).
Acompte : {{.Deposit}} €. Reste à régler : {{.Remaining}} €.
`),
	TemplateStatusChanged: mustTemplate(TemplateStatusChanged,
		`Rendez-vous {{.ServiceName}} : {{.Status}}`,
		`Bonjour {{.ClientName}},

Votre rendez-vous {{.ServiceName}} du {{.Start}} est maintenant : {{.Status}}.
`),
	TemplateRescheduled: mustTemplate(TemplateRescheduled,
		`Rendez-vous {{.ServiceName}} déplacé`,
		`Bonjour {{.ClientName}},

Votre rendez-vous {{.ServiceName}} a été déplacé au {{.Start}}.
`),
	TemplateReminder: mustTemplate(TemplateReminder,
		`Rappel : {{.ServiceName}} le {{.Start}}`,
		`Bonjour {{.ClientName}},

Rappel de votre rendez-vous {{.ServiceName}} le {{.Start}}.
Répondez OUI pour confirmer, REPORTER pour changer de date ou ANNULER pour annuler.
{{if .ConfirmURL}}
Confirmer : {{.ConfirmURL}}
Reporter : {{.RescheduleURL}}
Annuler : {{.CancelURL}}
{{end}}`),
	TemplateReplyAck: mustTemplate(TemplateReplyAck,
		`Réponse reçue`,
		`{{.Message}}`),
}

// Render devolve assunto e corpo.
func Render(name string, params map[string]any) (string, string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, params); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tpl.body.Execute(&body, params); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return subject.String(), body.String(), nil
}
