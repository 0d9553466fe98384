package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	"github.com/BruksfildServices01/institute-scheduler/internal/validators"
)

// ClientHandler é a ficha de clientes do operador.
type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// List busca por nome, e-mail ou telefone (?query=). Telefone é comparado
// só pelos dígitos, como é gravado.
func (h *ClientHandler) List(c *gin.Context) {
	term := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).
		Where("role = ?", models.RoleClient)

	if term != "" {
		like := "%" + term + "%"
		cond := h.db.Where("LOWER(name) LIKE ?", like).Or("LOWER(email) LIKE ?", like)
		if digits := validators.NormalizePhone(term); len(digits) >= 3 {
			cond = cond.Or("phone LIKE ?", "%"+digits+"%")
		}
		q = q.Where(cond)
	}

	var clients []models.Client
	if err := q.Order("name ASC").Limit(500).Find(&clients).Error; err != nil {
		httperr.Internal(c, "client_list_failed", "could not list clients")
		return
	}

	httpresp.List(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid client id")
		return
	}

	var client models.Client
	err = h.db.WithContext(c.Request.Context()).First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, httperr.CodeClientNotFound, "client not found")
		return
	}
	if err != nil {
		httperr.Internal(c, "client_get_failed", "could not load client")
		return
	}

	httpresp.OK(c, client)
}
