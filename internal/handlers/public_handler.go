package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/institute-scheduler/internal/dto"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/metrics"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type PublicHandler struct {
	create   *appointmentuc.CreateAppointment
	occupied *appointmentuc.ListOccupiedSlots
	check    *appointmentuc.CheckConflict
	loc      *time.Location
}

func NewPublicHandler(
	create *appointmentuc.CreateAppointment,
	occupied *appointmentuc.ListOccupiedSlots,
	check *appointmentuc.CheckConflict,
	loc *time.Location,
) *PublicHandler {
	return &PublicHandler{
		create:   create,
		occupied: occupied,
		check:    check,
		loc:      loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required"`
	ClientPhone string `json:"client_phone"`
	Password    string `json:"password"`

	ServiceID   string `json:"service_id"`
	ServiceSlug string `json:"service_slug"`

	// RFC3339 ou "2006-01-02 15:04"
	Start string `json:"start" binding:"required"`

	CashPayment bool   `json:"cash_payment"`
	Notes       string `json:"notes"`

	Package *models.PackageInfo `json:"package"`
}

type CheckConflictRequest struct {
	ServiceID   string `json:"service_id"`
	ServiceSlug string `json:"service_slug"`
	DurationMin int    `json:"duration_min"`
	Start       string `json:"start" binding:"required"`
	ExcludeID   string `json:"exclude_id"`
}

// ======================================================
// OCCUPIED SLOTS
// ======================================================

// OccupiedSlots só expõe intervalos, nunca dados de clientes.
func (h *PublicHandler) OccupiedSlots(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := parseStartIn(h.loc, raw)
		if err != nil {
			httperr.BadRequest(c, httperr.CodeValidation, "invalid from")
			return
		}
		from = t
	}

	slots, err := h.occupied.Execute(c.Request.Context(), from)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, dto.Slots(slots))
}

// ======================================================
// CONFLICT CHECK
// ======================================================

func (h *PublicHandler) CheckConflict(c *gin.Context) {
	var req CheckConflictRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	start, err := parseStartIn(h.loc, req.Start)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid start")
		return
	}

	conflicts, err := h.check.Execute(c.Request.Context(), appointmentuc.CheckConflictInput{
		ServiceID:   req.ServiceID,
		ServiceSlug: req.ServiceSlug,
		DurationMin: req.DurationMin,
		Start:       start,
		ExcludeID:   req.ExcludeID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"has_conflict": len(conflicts) > 0,
		"available":    len(conflicts) == 0,
		"conflicts":    conflicts,
	})
}

// ======================================================
// CREATE
// ======================================================

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := bindStrictJSON(c, &req); err != nil {
		metrics.Bookings.WithLabelValues("rejected").Inc()
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	start, err := parseStartIn(h.loc, req.Start)
	if err != nil {
		metrics.Bookings.WithLabelValues("rejected").Inc()
		httperr.BadRequest(c, httperr.CodeValidation, "invalid start")
		return
	}

	in := appointmentuc.CreateAppointmentInput{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		Password:    req.Password,
		ServiceID:   req.ServiceID,
		ServiceSlug: req.ServiceSlug,
		Start:       start,
		CashPayment: req.CashPayment,
		CreatedBy:   models.RoleClient,
		ClientNote:  req.Notes,
	}
	if req.Package != nil {
		in.Package = *req.Package
	}

	ap, err := h.create.Execute(c.Request.Context(), in)
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			result := "rejected"
			if be.Code == httperr.CodeSlotConflict {
				result = "conflict"
			}
			metrics.Bookings.WithLabelValues(result).Inc()
		}
		httperr.FromError(c, err)
		return
	}

	metrics.Bookings.WithLabelValues("created").Inc()
	httpresp.Created(c, ap)
}
