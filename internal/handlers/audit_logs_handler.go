package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db  *gorm.DB
	loc *time.Location
}

func NewAuditLogsHandler(db *gorm.DB, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, loc: loc}
}

// AuditLogQuery são os filtros do painel. from/to em YYYY-MM-DD, to inclusivo.
type AuditLogQuery struct {
	Action         string `form:"action"`
	Entity         string `form:"entity"`
	EntityID       string `form:"entity_id"`
	OperatorFacing bool   `form:"operator_facing"`
	From           string `form:"from"`
	To             string `form:"to"`

	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (q *AuditLogQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
}

// scope aplica só os filtros preenchidos.
func (q AuditLogQuery) scope(loc *time.Location) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Action != "" {
			db = db.Where("action = ?", q.Action)
		}
		if q.Entity != "" {
			db = db.Where("entity = ?", q.Entity)
		}
		if q.EntityID != "" {
			db = db.Where("entity_id = ?", q.EntityID)
		}
		if q.OperatorFacing {
			db = db.Where("operator_facing = ?", true)
		}
		if from, err := time.ParseInLocation("2006-01-02", q.From, loc); err == nil {
			db = db.Where("created_at >= ?", from)
		}
		if to, err := time.ParseInLocation("2006-01-02", q.To, loc); err == nil {
			db = db.Where("created_at < ?", to.AddDate(0, 0, 1))
		}
		return db
	}
}

type AuditLogPage struct {
	httpresp.ListResponse[models.AuditLog]
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// List é o feed do operador (respostas a lembretes, mudanças de status...).
func (h *AuditLogsHandler) List(c *gin.Context) {
	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid filters")
		return
	}
	q.normalize()

	base := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Scopes(q.scope(h.loc))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "could not count audit logs")
		return
	}

	logs := []models.AuditLog{}
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "could not list audit logs")
		return
	}

	httpresp.OK(c, AuditLogPage{
		ListResponse: httpresp.ListResponse[models.AuditLog]{Data: logs, Total: int(total)},
		Page:         q.Page,
		Limit:        q.Limit,
	})
}
