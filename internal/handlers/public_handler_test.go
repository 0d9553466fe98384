package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
	appointmentuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/appointment"
	reminderuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/reminder"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	repo := repository.NewMemory()
	repo.AddService(models.Service{
		Slug: "soin-visage", Name: "Soin visage", Category: "facial",
		DurationMin: 60, Price: decimal.NewFromInt(80), Active: true,
	})

	deps := appointmentuc.Deps{
		Repo:           repo,
		Calendar:       calendar.New(15),
		Cache:          calendar.NewMemoryCache(time.Minute),
		Location:       time.UTC,
		DefaultDeposit: decimal.NewFromInt(30),
		Now:            func() time.Time { return testNow },
	}
	status := appointmentuc.NewUpdateAppointmentStatus(deps, nil)

	public := NewPublicHandler(
		appointmentuc.NewCreateAppointment(deps),
		appointmentuc.NewListOccupiedSlots(deps),
		appointmentuc.NewCheckConflict(deps),
		time.UTC,
	)
	webhook := NewWebhookHandler(
		reminderuc.NewHandleReply(repo, status, nil, nil).WithClock(func() time.Time { return testNow }),
	)

	r := gin.New()
	api := r.Group("/api/public")
	api.GET("/occupied-slots", public.OccupiedSlots)
	api.POST("/conflicts/check", public.CheckConflict)
	api.POST("/appointments", public.CreateAppointment)
	r.POST("/api/webhooks/messages", middleware.WebhookSecret("s3cret"), webhook.Messages)
	return r
}

func doJSON(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func booking(email, start string) gin.H {
	return gin.H{
		"client_name":  "Camille Roux",
		"client_email": email,
		"client_phone": "0612345678",
		"service_slug": "soin-visage",
		"start":        start,
	}
}

func withField(body gin.H, key string, value any) gin.H {
	body[key] = value
	return body
}

func TestStrictBindTrailingData(t *testing.T) {
	r := newTestRouter(t)

	body := `{"service_slug":"soin-visage","start":"2026-03-03 09:00"}{"start":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/conflicts/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d body=%s", w.Code, w.Body)
	}
}

func TestPublicCreateAppointment(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/public/appointments", booking("camille@example.com", "2026-03-03 10:00"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}

	var ap models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &ap); err != nil {
		t.Fatal(err)
	}
	if ap.Status != "pending" || ap.Service.Name != "Soin visage" {
		t.Errorf("appointment = %+v", ap)
	}
	if !ap.Payment.RemainingAmount.Equal(decimal.NewFromInt(80)) {
		t.Errorf("remaining = %s", ap.Payment.RemainingAmount)
	}

	// 10:00 + 60min + 15min de buffer: 11:00 ainda está ocupado
	w = doJSON(r, http.MethodPost, "/api/public/appointments", booking("other@example.com", "2026-03-03 11:00"), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d body=%s", w.Code, w.Body)
	}
	var herr httperr.HTTPError
	_ = json.Unmarshal(w.Body.Bytes(), &herr)
	if herr.Code != httperr.CodeSlotConflict {
		t.Errorf("error_code = %q", herr.Code)
	}
}

func TestPublicCreateAppointmentBadRequest(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"client_name": "A", "start": "2026-03-03 10:00"}},
		{"bad start", booking("a@example.com", "demain")},
		{"past start", booking("a@example.com", "2026-03-01 10:00")},
		{"unknown field", withField(booking("a@example.com", "2026-03-03 10:00"), "status", "confirmed")},
		{"misspelled field", withField(booking("a@example.com", "2026-03-03 10:00"), "cash_paymnet", true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/public/appointments", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d body=%s", w.Code, w.Body)
			}
		})
	}
}

func TestOccupiedSlotsAndConflictCheck(t *testing.T) {
	r := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/public/appointments", booking("camille@example.com", "2026-03-03T10:00:00Z"), nil); w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body)
	}

	w := doJSON(r, http.MethodGet, "/api/public/occupied-slots", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list struct {
		Data []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || !list.Data[0].End.Equal(time.Date(2026, 3, 3, 11, 15, 0, 0, time.UTC)) {
		t.Fatalf("slots = %+v", list)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("camille")) {
		t.Error("occupied slots leak client data")
	}

	tests := []struct {
		start     string
		available bool
	}{
		{"2026-03-03 09:00", false},
		{"2026-03-03 08:00", true},
		{"2026-03-03 11:15", true},
	}
	for _, tt := range tests {
		w := doJSON(r, http.MethodPost, "/api/public/conflicts/check", gin.H{"service_slug": "soin-visage", "start": tt.start}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d %s", tt.start, w.Code, w.Body)
		}
		var res struct {
			Available bool `json:"available"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if res.Available != tt.available {
			t.Errorf("%s: available = %v, want %v", tt.start, res.Available, tt.available)
		}
	}

	// duração direta, sem serviço: 09:30 + 15min + 15min de buffer encosta em 10:00
	for _, tc := range []struct {
		duration    int
		hasConflict bool
	}{{15, false}, {20, true}} {
		w := doJSON(r, http.MethodPost, "/api/public/conflicts/check", gin.H{"duration_min": tc.duration, "start": "2026-03-03 09:30"}, nil)
		var res struct {
			HasConflict bool `json:"has_conflict"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		if w.Code != http.StatusOK || res.HasConflict != tc.hasConflict {
			t.Errorf("duration %d: status=%d has_conflict=%v", tc.duration, w.Code, res.HasConflict)
		}
	}
}

func TestWebhookRequiresSecret(t *testing.T) {
	r := newTestRouter(t)
	msg := gin.H{"message_id": "m-1", "from": "0612345678", "text": "oui"}

	if w := doJSON(r, http.MethodPost, "/api/webhooks/messages", msg, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("without secret = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/webhooks/messages", msg, map[string]string{middleware.WebhookSecretHeader: "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret = %d", w.Code)
	}

	w := doJSON(r, http.MethodPost, "/api/webhooks/messages", msg, map[string]string{middleware.WebhookSecretHeader: "s3cret"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	var res reminderuc.ReplyResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Intent != "confirm" || res.Duplicate {
		t.Errorf("res = %+v", res)
	}

	w = doJSON(r, http.MethodPost, "/api/webhooks/messages", msg, map[string]string{middleware.WebhookSecretHeader: "s3cret"})
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if w.Code != http.StatusOK || !res.Duplicate {
		t.Errorf("redelivery = %d %+v", w.Code, res)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Soin Visage":          "soin-visage",
		"  Hydrafacial Éclat ": "hydrafacial-eclat",
		"LED -- Thérapie!":     "led-therapie",
		"Combiné 2/3":          "combine-2-3",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
