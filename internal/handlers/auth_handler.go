package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

const codeInvalidCredentials = "invalid_credentials"

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SessionClient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

type LoginResponse struct {
	Client SessionClient `json:"client"`
	Token  string        `json:"token"`
}

// Login serve clientes e operadores. Quem reservou sem senha só entra
// depois de definir uma numa reserva seguinte.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "email and password required")
		return
	}

	client, err := h.findByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, codeInvalidCredentials, "invalid credentials")
			return
		}
		log.Printf("auth: lookup %s: %v", req.Email, err)
		httperr.Internal(c, "internal_error", "internal error")
		return
	}

	// mesma resposta para conta sem senha e senha errada
	if client.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Password)) != nil {
		httperr.Unauthorized(c, codeInvalidCredentials, "invalid credentials")
		return
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, client, time.Now())
	if err != nil {
		httperr.Internal(c, "token_failed", "could not issue token")
		return
	}

	httpresp.OK(c, LoginResponse{
		Client: SessionClient{
			ID:    client.ID,
			Name:  client.Name,
			Email: client.Email,
			Phone: client.Phone,
			Role:  client.Role,
		},
		Token: token,
	})
}

func (h *AuthHandler) findByEmail(c *gin.Context, email string) (*models.Client, error) {
	var client models.Client
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}
