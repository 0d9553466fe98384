// Package app monta as dependências do serviço a partir da configuração.
// A API e a CLI usam a mesma montagem.
package app

import (
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/audit"
	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/events"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/notify"
	infraRepo "github.com/BruksfildServices01/institute-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/institute-scheduler/internal/timezone"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
	loyaltyuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/loyalty"
	reminderuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/reminder"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Location *time.Location

	Audit     *audit.Dispatcher
	Notifier  *notify.Notifier
	Publisher *events.AMQPPublisher
	Redis     *redis.Client

	Policy     loyalty.Policy
	Classifier loyalty.Classifier

	// -------- Appointments --------
	CreateAppointment       *appointmentuc.CreateAppointment
	RescheduleAppointment   *appointmentuc.RescheduleAppointment
	UpdateAppointmentStatus *appointmentuc.UpdateAppointmentStatus
	RecordPayment           *appointmentuc.RecordPayment
	CheckConflict           *appointmentuc.CheckConflict
	ListOccupiedSlots       *appointmentuc.ListOccupiedSlots
	ListByDate              *appointmentuc.ListAppointmentsByDate
	ListByMonth             *appointmentuc.ListAppointmentsByMonth
	ListClientAppointments  *appointmentuc.ListClientAppointments

	// -------- Loyalty --------
	RecordCompletion *loyaltyuc.RecordCompletion
	RetryAccruals    *loyaltyuc.RetryAccruals
	GetLoyalty       *loyaltyuc.GetAccount
	GrantExceptional *loyaltyuc.GrantExceptional
	Redeem           *loyaltyuc.Redeem

	// -------- Reminders --------
	SendDueReminders *reminderuc.SendDueReminders
	HandleReply      *reminderuc.HandleReply
}

// New monta o grafo. Redis, AMQP, SMTP e gateway de mensagens são
// opcionais: sem URL cada um cai para a versão local.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{
		Config:   cfg,
		DB:       db,
		Location: timezone.Location(cfg.Timezone),
	}

	policy, classifier, err := config.LoadLoyalty(cfg.LoyaltyConfigPath)
	if err != nil {
		return nil, err
	}
	a.Policy, a.Classifier = policy, classifier

	// ======================================================
	// INFRA
	// ======================================================
	var (
		slotCache calendar.SlotCache = calendar.NewMemoryCache(cfg.SlotCacheTTL)
		locker    lock.Locker        = lock.NewLocal()
	)

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("app: redis unavailable, using local cache and lock: %v", err)
		} else {
			a.Redis = client
			slotCache = cache.NewRedisSlotCache(client, cfg.SlotCacheTTL)
			locker = lock.NewRedis(client, cfg.LockTTL)
		}
	}

	var publisher audit.Publisher
	if cfg.AMQPURL != "" {
		a.Publisher = events.NewAMQPPublisher(cfg.AMQPURL, "")
		publisher = a.Publisher
	}
	a.Audit = audit.NewDispatcher(audit.New(db), publisher)

	var emailGW, messageGW notify.Gateway
	if cfg.SMTP.Enabled() {
		emailGW = notify.NewEmailGateway(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	}
	if cfg.MessageGatewayURL != "" {
		messageGW = notify.NewMessageGateway(cfg.MessageGatewayURL)
	}
	a.Notifier = notify.NewNotifier(emailGW, messageGW)

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	loyaltyRepo := infraRepo.NewLoyaltyGormRepository(db)

	// ======================================================
	// USE CASES
	// ======================================================
	deps := appointmentuc.Deps{
		Repo:           appointmentRepo,
		Calendar:       calendar.New(cfg.BufferMinutes),
		Cache:          slotCache,
		Audit:          a.Audit,
		Notifier:       a.Notifier,
		Location:       a.Location,
		ReminderLead:   cfg.ReminderLead,
		DefaultDeposit: cfg.DefaultDeposit,
	}

	a.RecordCompletion = loyaltyuc.NewRecordCompletion(loyaltyRepo, policy, classifier, a.Audit)
	a.RetryAccruals = loyaltyuc.NewRetryAccruals(appointmentRepo, a.RecordCompletion)
	a.GetLoyalty = loyaltyuc.NewGetAccount(loyaltyRepo, appointmentRepo, policy)
	a.GrantExceptional = loyaltyuc.NewGrantExceptional(loyaltyRepo, appointmentRepo, a.Audit)
	a.Redeem = loyaltyuc.NewRedeem(loyaltyRepo, appointmentRepo, a.Audit)

	a.CreateAppointment = appointmentuc.NewCreateAppointment(deps)
	a.RescheduleAppointment = appointmentuc.NewRescheduleAppointment(deps)
	a.UpdateAppointmentStatus = appointmentuc.NewUpdateAppointmentStatus(deps, a.RecordCompletion)
	a.RecordPayment = appointmentuc.NewRecordPayment(deps)
	a.CheckConflict = appointmentuc.NewCheckConflict(deps)
	a.ListOccupiedSlots = appointmentuc.NewListOccupiedSlots(deps)
	a.ListByDate = appointmentuc.NewListAppointmentsByDate(appointmentRepo, a.Location)
	a.ListByMonth = appointmentuc.NewListAppointmentsByMonth(appointmentRepo, a.Location)
	a.ListClientAppointments = appointmentuc.NewListClientAppointments(appointmentRepo)

	a.SendDueReminders = reminderuc.NewSendDueReminders(appointmentRepo, a.Notifier, locker, a.Location, cfg.PublicBaseURL)
	a.HandleReply = reminderuc.NewHandleReply(appointmentRepo, a.UpdateAppointmentStatus, a.Notifier, a.Audit)

	return a, nil
}

// Close libera, na ordem, auditoria pendente, envios em voo e conexões.
func (a *App) Close() {
	a.Audit.Close()
	a.Notifier.Wait()

	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("app: close redis: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
