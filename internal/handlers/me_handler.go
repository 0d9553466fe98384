package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	loyaltyuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/loyalty"
)

type MeHandler struct {
	db      *gorm.DB
	loyalty *loyaltyuc.GetAccount
}

func NewMeHandler(db *gorm.DB, loyalty *loyaltyuc.GetAccount) *MeHandler {
	return &MeHandler{db: db, loyalty: loyalty}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).
		First(&client, "id = ?", actor.ClientID).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "client_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client": gin.H{
			"id":    client.ID,
			"name":  client.Name,
			"email": client.Email,
			"phone": client.Phone,
			"role":  client.Role,
		},
	})
}

func (h *MeHandler) MyLoyalty(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	view, err := h.loyalty.Execute(c.Request.Context(), actor, actor.ClientID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, view)
}
