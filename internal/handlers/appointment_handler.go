package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/metrics"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *appointmentuc.CreateAppointment
	reschedule *appointmentuc.RescheduleAppointment
	status     *appointmentuc.UpdateAppointmentStatus
	payment    *appointmentuc.RecordPayment
	byDate     *appointmentuc.ListAppointmentsByDate
	byMonth    *appointmentuc.ListAppointmentsByMonth
	byClient   *appointmentuc.ListClientAppointments
	loc        *time.Location
}

func NewAppointmentHandler(
	create *appointmentuc.CreateAppointment,
	reschedule *appointmentuc.RescheduleAppointment,
	status *appointmentuc.UpdateAppointmentStatus,
	payment *appointmentuc.RecordPayment,
	byDate *appointmentuc.ListAppointmentsByDate,
	byMonth *appointmentuc.ListAppointmentsByMonth,
	byClient *appointmentuc.ListClientAppointments,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		reschedule: reschedule,
		status:     status,
		payment:    payment,
		byDate:     byDate,
		byMonth:    byMonth,
		byClient:   byClient,
		loc:        loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type RescheduleRequest struct {
	Start string `json:"start" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status" binding:"required"`
}

type OperatorCreateAppointmentRequest struct {
	PublicCreateAppointmentRequest
	InitialStatus string `json:"initial_status"`
}

// ======================================================
// CREATE (OPERADOR)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req OperatorCreateAppointmentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	start, err := parseStartIn(h.loc, req.Start)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid start")
		return
	}

	in := appointmentuc.CreateAppointmentInput{
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		ServiceID:     req.ServiceID,
		ServiceSlug:   req.ServiceSlug,
		Start:         start,
		CashPayment:   req.CashPayment,
		InitialStatus: req.InitialStatus,
		CreatedBy:     models.RoleOperator,
		ClientNote:    req.Notes,
	}
	if req.Package != nil {
		in.Package = *req.Package
	}

	ap, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	metrics.Bookings.WithLabelValues("created").Inc()
	httpresp.Created(c, ap)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	start, err := parseStartIn(h.loc, req.Start)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid start")
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), appointmentuc.RescheduleAppointmentInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: c.Param("id"),
		NewStart:      start,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	actor := middleware.ActorFrom(c)
	via := "client"
	if actor.IsOperator() {
		via = "operator"
	}

	ap, err := h.status.Execute(c.Request.Context(), appointmentuc.UpdateStatusInput{
		Actor:         actor,
		AppointmentID: c.Param("id"),
		Status:        req.Status,
		Via:           via,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	metrics.StatusTransitions.WithLabelValues(ap.Status).Inc()
	httpresp.OK(c, ap)
}

// ======================================================
// PAYMENT
// ======================================================

func (h *AppointmentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	ap, err := h.payment.Execute(c.Request.Context(), appointmentuc.RecordPaymentInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: c.Param("id"),
		Amount:        req.Amount,
		Status:        req.Status,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := time.Now().In(h.loc)
	if raw := c.Query("date"); raw != "" {
		d, err := parseDateIn(h.loc, raw)
		if err != nil {
			httperr.BadRequest(c, httperr.CodeValidation, "invalid date")
			return
		}
		date = d
	}

	out, err := h.byDate.Execute(c.Request.Context(), date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	now := time.Now().In(h.loc)

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid month")
		return
	}

	out, err := h.byMonth.Execute(c.Request.Context(), year, month)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) Mine(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	aps, err := h.byClient.Execute(c.Request.Context(), actor.ClientID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, aps)
}
