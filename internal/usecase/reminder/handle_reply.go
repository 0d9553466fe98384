package reminder

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/validators"
)

const (
	replyConfirmed  = "Merci, votre rendez-vous est confirmé."
	replyReschedule = "C'est noté, nous vous recontactons pour choisir une nouvelle date."
	replyCancelled  = "Votre rendez-vous a bien été annulé."
	replyUnknown    = "Répondez OUI pour confirmer, REPORTER pour changer de date ou ANNULER pour annuler."
	replyNoBooking  = "Nous n'avons trouvé aucun rendez-vous à venir à votre nom."
	replyFailed     = "Nous n'avons pas pu traiter votre réponse, l'institut va vous recontacter."
)

type ReplyInput struct {
	MessageID string
	From      string
	Text      string

	// Channel onde a confirmação de recebimento é enviada.
	Channel string
}

type ReplyResult struct {
	Intent        reminder.Intent `json:"intent"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	Reply         string          `json:"reply"`
	Duplicate     bool            `json:"duplicate"`
}

type HandleReply struct {
	repo     domain.Repository
	status   *appointmentuc.UpdateAppointmentStatus
	notifier *notify.Notifier
	audit    *audit.Dispatcher
	now      func() time.Time
}

func NewHandleReply(
	repo domain.Repository,
	status *appointmentuc.UpdateAppointmentStatus,
	notifier *notify.Notifier,
	audit *audit.Dispatcher,
) *HandleReply {
	return &HandleReply{
		repo:     repo,
		status:   status,
		notifier: notifier,
		audit:    audit,
		now:      time.Now,
	}
}

func (uc *HandleReply) WithClock(now func() time.Time) *HandleReply {
	uc.now = now
	return uc
}

// Execute interpreta a resposta, aplica a transição no próximo agendamento
// do cliente, responde no mesmo canal e avisa o operador. Reentregas do
// mesmo MessageID devolvem o resultado anterior sem reaplicar nada.
func (uc *HandleReply) Execute(ctx context.Context, in ReplyInput) (*ReplyResult, error) {
	in.MessageID = strings.TrimSpace(in.MessageID)
	if in.MessageID == "" || strings.TrimSpace(in.From) == "" {
		return nil, httperr.ErrBusinessDetail(httperr.CodeValidation, "message id and sender required")
	}
	if in.Channel == "" {
		in.Channel = reminder.ChannelMessage
	}

	// A reivindicação vem antes de qualquer efeito: entregas simultâneas
	// do mesmo id disputam a inserção e só uma segue.
	msg := &models.InboundMessage{
		MessageID:   in.MessageID,
		FromContact: in.From,
		Text:        in.Text,
		CreatedAt:   uc.now(),
	}
	claimed, err := uc.repo.ClaimInbound(ctx, msg)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return uc.previous(ctx, in)
	}

	res := uc.resolve(ctx, in)

	msg.Intent = string(res.Intent)
	msg.AppointmentID = res.AppointmentID
	msg.Reply = res.Reply
	if err := uc.repo.CompleteInbound(ctx, msg); err != nil {
		log.Printf("reminder: complete inbound %s: %v", in.MessageID, err)
	}

	uc.notifier.SendAsync(in.Channel, in.From, notify.TemplateReplyAck, map[string]any{"Message": res.Reply})

	uc.audit.Dispatch(audit.Event{
		Action:         "inbound_reply",
		Entity:         "appointment",
		EntityID:       res.AppointmentID,
		OperatorFacing: true,
		Metadata: map[string]any{
			"from":   in.From,
			"text":   in.Text,
			"intent": string(res.Intent),
		},
	})

	return res, nil
}

// previous devolve o resultado da entrega que ganhou a reivindicação.
// Se ela ainda está em andamento a intenção vem do texto e a resposta fica vazia.
func (uc *HandleReply) previous(ctx context.Context, in ReplyInput) (*ReplyResult, error) {
	prev, err := uc.repo.FindInbound(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}

	res := &ReplyResult{
		Intent:        reminder.Intent(prev.Intent),
		AppointmentID: prev.AppointmentID,
		Reply:         prev.Reply,
		Duplicate:     true,
	}
	if res.Intent == "" {
		res.Intent = reminder.ParseReply(prev.Text)
	}
	return res, nil
}

func (uc *HandleReply) resolve(ctx context.Context, in ReplyInput) *ReplyResult {
	intent := reminder.ParseReply(in.Text)
	res := &ReplyResult{Intent: intent}

	contact := strings.TrimSpace(in.From)
	if !strings.Contains(contact, "@") {
		contact = validators.NormalizePhone(contact)
	}

	client, err := uc.repo.FindClientByContact(ctx, contact)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("reminder: lookup %s: %v", in.From, err)
		}
		res.Reply = replyNoBooking
		return res
	}

	ap, err := uc.repo.NextActiveForClient(ctx, client.ID, uc.now())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("reminder: next appointment for %s: %v", client.ID, err)
		}
		res.Reply = replyNoBooking
		return res
	}

	id := ap.ID
	res.AppointmentID = &id

	target, ok := intent.TargetStatus()
	if !ok {
		res.Reply = replyUnknown
		return res
	}

	actor := domain.Actor{ClientID: client.ID, Role: models.RoleClient}
	if _, err := uc.status.Apply(ctx, ap, target, actor, "message channel"); err != nil {
		log.Printf("reminder: apply %s to %s: %v", target, ap.ID, err)
		res.Reply = replyFailed
		return res
	}

	switch intent {
	case reminder.IntentConfirm:
		res.Reply = replyConfirmed
	case reminder.IntentReschedule:
		res.Reply = replyReschedule
	case reminder.IntentCancel:
		res.Reply = replyCancelled
	}
	return res
}
