package routes

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/institute-scheduler/internal/app"
	"github.com/BruksfildServices01/institute-scheduler/internal/handlers"
	"github.com/BruksfildServices01/institute-scheduler/internal/metrics"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(a.Config.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(a.DB, a.Config)
	meHandler := handlers.NewMeHandler(a.DB, a.GetLoyalty)
	serviceHandler := handlers.NewServiceHandler(a.DB)
	clientHandler := handlers.NewClientHandler(a.DB)
	auditLogsHandler := handlers.NewAuditLogsHandler(a.DB, a.Location)

	publicHandler := handlers.NewPublicHandler(
		a.CreateAppointment,
		a.ListOccupiedSlots,
		a.CheckConflict,
		a.Location,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		a.CreateAppointment,
		a.RescheduleAppointment,
		a.UpdateAppointmentStatus,
		a.RecordPayment,
		a.ListByDate,
		a.ListByMonth,
		a.ListClientAppointments,
		a.Location,
	)

	loyaltyHandler := handlers.NewLoyaltyHandler(a.GetLoyalty, a.GrantExceptional, a.Redeem)
	webhookHandler := handlers.NewWebhookHandler(a.HandleReply)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/services", serviceHandler.PublicList)
			publicAPI.GET("/occupied-slots", publicHandler.OccupiedSlots)
			publicAPI.POST("/conflicts/check", publicHandler.CheckConflict)
			publicAPI.POST("/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 📨 WEBHOOKS
		// ------------------------------
		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookSecret(a.Config.WebhookSecret))
		{
			webhooks.POST("/messages", webhookHandler.Messages)
		}

		// ------------------------------
		// 🔐 API PRIVADA (cliente ou operador)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(a.Config))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/appointments", appointmentHandler.Mine)
			secured.GET("/me/loyalty", meHandler.MyLoyalty)

			secured.POST("/appointments/:id/reschedule", appointmentHandler.Reschedule)
			secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
		}

		// ------------------------------
		// 🏷️ OPERADOR
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(a.Config), middleware.RequireOperator())
		{
			admin.POST("/appointments", appointmentHandler.Create)
			admin.GET("/appointments", appointmentHandler.ListByDate)
			admin.GET("/appointments/month", appointmentHandler.ListByMonth)
			admin.POST("/appointments/:id/payments", appointmentHandler.RecordPayment)

			admin.GET("/clients", clientHandler.List)
			admin.GET("/clients/:clientId", clientHandler.Get)

			admin.GET("/loyalty/:clientId", loyaltyHandler.Get)
			admin.POST("/loyalty/:clientId/grants", loyaltyHandler.Grant)
			admin.POST("/loyalty/:clientId/redemptions", loyaltyHandler.Redeem)

			admin.GET("/services", serviceHandler.List)
			admin.POST("/services", serviceHandler.Create)
			admin.PATCH("/services/:id", serviceHandler.Update)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
