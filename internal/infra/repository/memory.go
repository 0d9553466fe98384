package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/reminder"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// Memory implementa os repositórios em memória (testes).
type Memory struct {
	calMu sync.Mutex // agenda
	mu    sync.Mutex // dados

	services     map[uuid.UUID]models.Service
	clients      map[uuid.UUID]models.Client
	appointments map[uuid.UUID]models.Appointment
	accounts     map[uuid.UUID]models.LoyaltyAccount
	inbound      map[string]models.InboundMessage

	// AccrualErr, se definido, faz AccrueOnce falhar (testes de retry).
	AccrualErr error
}

func NewMemory() *Memory {
	return &Memory{
		services:     map[uuid.UUID]models.Service{},
		clients:      map[uuid.UUID]models.Client{},
		appointments: map[uuid.UUID]models.Appointment{},
		accounts:     map[uuid.UUID]models.LoyaltyAccount{},
		inbound:      map[string]models.InboundMessage{},
	}
}

// AddService cadastra um serviço no catálogo.
func (m *Memory) AddService(s models.Service) models.Service {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.services[s.ID] = s
	return s
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (m *Memory) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) GetServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, s := range m.services {
		if s.Slug == slug {
			out := s
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (m *Memory) UpsertClient(ctx context.Context, in domain.ClientIdentity) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	now := time.Now()

	for id, c := range m.clients {
		if c.Email != email {
			continue
		}
		if in.Name != "" {
			c.Name = strings.TrimSpace(in.Name)
		}
		if in.Phone != "" {
			c.Phone = strings.TrimSpace(in.Phone)
		}
		if in.PasswordHash != "" && c.PasswordHash == "" {
			c.PasswordHash = in.PasswordHash
		}
		c.UpdatedAt = now
		m.clients[id] = c
		return &c, nil
	}

	c := models.Client{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: in.PasswordHash,
		Role:         models.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.clients[c.ID] = c
	return &c, nil
}

func (m *Memory) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) FindClientByContact(ctx context.Context, contact string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contact = strings.TrimSpace(contact)
	for _, c := range m.clients {
		if c.Email == strings.ToLower(contact) || (c.Phone != "" && c.Phone == contact) {
			out := c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (m *Memory) InCalendarTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	m.calMu.Lock()
	defer m.calMu.Unlock()

	return fn(ctx, memoryTx{m})
}

// memoryTx já está dentro da agenda travada.
type memoryTx struct {
	*Memory
}

func (t memoryTx) InCalendarTx(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	return fn(ctx, t)
}

func (m *Memory) ListBlocking(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.Status == string(domain.StatusCancelled) {
			continue
		}
		if ap.ScheduledStart.Before(to) && ap.ScheduledEnd.After(from) {
			out = append(out, ap)
		}
	}
	sortByStart(out)
	return out, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (m *Memory) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ap.ID == uuid.Nil {
		ap.ID = uuid.New()
	}
	now := time.Now()
	ap.CreatedAt = now
	ap.UpdatedAt = now
	ap.Payment.Recompute()

	stored := *ap
	stored.Client = models.Client{}
	m.appointments[ap.ID] = stored
	return nil
}

func (m *Memory) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ap.Client = m.clients[ap.ClientID]
	return &ap, nil
}

func (m *Memory) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[ap.ID]; !ok {
		return domain.ErrNotFound
	}
	m.store(ap)
	return nil
}

func (m *Memory) UpdateAppointmentIfStatus(ctx context.Context, ap *models.Appointment, from domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.appointments[ap.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Status != string(from) {
		return domain.ErrStaleStatus
	}
	m.store(ap)
	return nil
}

func (m *Memory) store(ap *models.Appointment) {
	ap.UpdatedAt = time.Now()
	ap.Payment.Recompute()

	stored := *ap
	stored.Client = models.Client{}
	m.appointments[ap.ID] = stored
}

func (m *Memory) ListAppointmentsForPeriod(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if !ap.ScheduledStart.Before(start) && ap.ScheduledStart.Before(end) {
			ap.Client = m.clients[ap.ClientID]
			out = append(out, ap)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *Memory) ListAppointmentsForClient(ctx context.Context, clientID uuid.UUID) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.ClientID == clientID {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledStart.After(out[j].ScheduledStart) })
	return out, nil
}

func (m *Memory) NextActiveForClient(ctx context.Context, clientID uuid.UUID, now time.Time) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *models.Appointment
	for _, ap := range m.appointments {
		st := domain.Status(ap.Status)
		if ap.ClientID != clientID || !st.RemindersApply() || !ap.ScheduledStart.After(now) {
			continue
		}
		cand := ap
		if best == nil || preferForReply(cand, *best) {
			best = &cand
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	best.Client = m.clients[best.ClientID]
	return best, nil
}

// confirmados primeiro; depois o mais próximo
func preferForReply(a, b models.Appointment) bool {
	aConf := a.Status == string(domain.StatusConfirmed)
	bConf := b.Status == string(domain.StatusConfirmed)
	if aConf != bConf {
		return aConf
	}
	return a.ScheduledStart.Before(b.ScheduledStart)
}

// --------------------------------------------------
// Reminders
// --------------------------------------------------

func (m *Memory) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if !domain.Status(ap.Status).RemindersApply() || ap.ReminderSentAt != nil {
			continue
		}
		if ap.ReminderDueAt.After(now) || !ap.ScheduledStart.After(now) {
			continue
		}
		ap.Client = m.clients[ap.ClientID]
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDueAt.Before(out[j].ReminderDueAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ClaimReminder(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok || ap.ReminderSentAt != nil || !domain.Status(ap.Status).RemindersApply() {
		return false, nil
	}
	ap.ReminderSentAt = &now
	m.appointments[id] = ap
	return true, nil
}

func (m *Memory) MarkReminderDelivered(ctx context.Context, id uuid.UUID, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if channel == reminder.ChannelEmail {
		ap.EmailReminderSent = true
	} else {
		ap.MessageReminderSent = true
	}
	m.appointments[id] = ap
	return nil
}

// --------------------------------------------------
// Loyalty retry
// --------------------------------------------------

func (m *Memory) ListCompletedWithoutAccrual(ctx context.Context, limit int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, ap := range m.appointments {
		if ap.Status == string(domain.StatusCompleted) && ap.LoyaltyAccruedAt == nil {
			out = append(out, ap)
		}
	}
	sortByStart(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --------------------------------------------------
// Inbound replies
// --------------------------------------------------

func (m *Memory) FindInbound(ctx context.Context, messageID string) (*models.InboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.inbound[messageID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

func (m *Memory) ClaimInbound(ctx context.Context, msg *models.InboundMessage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.inbound[msg.MessageID]; exists {
		return false, nil
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.inbound[msg.MessageID] = *msg
	return true, nil
}

func (m *Memory) CompleteInbound(ctx context.Context, msg *models.InboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.inbound[msg.MessageID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Intent = msg.Intent
	stored.AppointmentID = msg.AppointmentID
	stored.Reply = msg.Reply
	m.inbound[msg.MessageID] = stored
	return nil
}

// --------------------------------------------------
// Loyalty
// --------------------------------------------------

func (m *Memory) GetAccount(ctx context.Context, clientID uuid.UUID) (*models.LoyaltyAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[clientID]
	if !ok {
		return nil, loyalty.ErrNotFound
	}
	out := cloneAccount(acct)
	return &out, nil
}

func (m *Memory) UpdateAccount(
	ctx context.Context,
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (*models.LoyaltyAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mutateAccount(clientID, fn)
}

func (m *Memory) AccrueOnce(
	ctx context.Context,
	appointmentID uuid.UUID,
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AccrualErr != nil {
		return false, m.AccrualErr
	}

	ap, ok := m.appointments[appointmentID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if ap.LoyaltyAccruedAt != nil {
		return false, nil
	}

	if fn != nil {
		if _, err := m.mutateAccount(clientID, fn); err != nil {
			return false, err
		}
	}

	now := time.Now()
	ap.LoyaltyAccruedAt = &now
	m.appointments[appointmentID] = ap
	return true, nil
}

// mutateAccount: fn trabalha numa cópia; só grava se não falhar.
func (m *Memory) mutateAccount(
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (*models.LoyaltyAccount, error) {

	acct, ok := m.accounts[clientID]
	if !ok {
		now := time.Now()
		acct = models.LoyaltyAccount{
			ID:             uuid.New(),
			ClientID:       clientID,
			LastActivityAt: now,
			CreatedAt:      now,
		}
	}

	work := cloneAccount(acct)
	if err := fn(&work); err != nil {
		return nil, err
	}

	for i := range work.History {
		if work.History[i].ID == uuid.Nil {
			work.History[i].ID = uuid.New()
		}
	}
	for i := range work.DiscountsUsed {
		if work.DiscountsUsed[i].ID == uuid.Nil {
			work.DiscountsUsed[i].ID = uuid.New()
		}
	}
	work.UpdatedAt = time.Now()

	m.accounts[clientID] = cloneAccount(work)
	return &work, nil
}

func cloneAccount(a models.LoyaltyAccount) models.LoyaltyAccount {
	a.History = append([]models.LoyaltyEvent(nil), a.History...)
	a.DiscountsUsed = append([]models.DiscountUse(nil), a.DiscountsUsed...)
	return a
}

func sortByStart(apps []models.Appointment) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].ScheduledStart.Before(apps[j].ScheduledStart) })
}

var (
	_ domain.Repository  = (*Memory)(nil)
	_ domain.Repository  = memoryTx{}
	_ loyalty.Repository = (*Memory)(nil)
)
