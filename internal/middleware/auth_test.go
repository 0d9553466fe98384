package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/config"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ClientID, "role": actor.Role})
	})
	r.GET("/admin", AuthMiddleware(cfg), RequireOperator(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	r := newAuthRouter(cfg)

	client := &models.Client{ID: uuid.New(), Role: models.RoleClient}
	operator := &models.Client{ID: uuid.New(), Role: models.RoleOperator}

	clientToken, err := IssueToken(cfg.JWTSecret, client, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	operatorToken, _ := IssueToken(cfg.JWTSecret, operator, time.Now())
	expired, _ := IssueToken(cfg.JWTSecret, client, time.Now().Add(-48*time.Hour))
	forged, _ := IssueToken("other-secret", operator, time.Now())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage", "/me", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + forged, http.StatusUnauthorized},
		{"client ok", "/me", "Bearer " + clientToken, http.StatusOK},
		{"client on admin", "/admin", "Bearer " + clientToken, http.StatusForbidden},
		{"operator on admin", "/admin", "bearer " + operatorToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body)
			}
		})
	}
}
