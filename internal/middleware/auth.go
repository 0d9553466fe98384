package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	domain "github.com/BruksfildServices01/institute-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

const (
	ContextClientID = "clientID"
	ContextRole     = "role"
)

const tokenTTL = 24 * time.Hour

// IssueToken assina o JWT de um cliente ou operador.
func IssueToken(secret string, client *models.Client, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  client.ID.String(),
		"role": client.Role,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {

			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		clientID, err := uuid.Parse(sub)
		role, _ := claims["role"].(string)
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		c.Set(ContextClientID, clientID)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RequireOperator barra quem não é do instituto.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(ContextRole); role != models.RoleOperator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator_only"})
			return
		}
		c.Next()
	}
}

// ActorFrom lê a identidade que AuthMiddleware colocou no contexto.
func ActorFrom(c *gin.Context) domain.Actor {
	var actor domain.Actor
	if v, ok := c.Get(ContextClientID); ok {
		actor.ClientID, _ = v.(uuid.UUID)
	}
	if v, ok := c.Get(ContextRole); ok {
		actor.Role, _ = v.(string)
	}
	return actor
}
