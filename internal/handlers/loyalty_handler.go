package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/middleware"
	loyaltyuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/loyalty"
)

// ======================================================
// HANDLER (OPERADOR)
// ======================================================

type LoyaltyHandler struct {
	get    *loyaltyuc.GetAccount
	grant  *loyaltyuc.GrantExceptional
	redeem *loyaltyuc.Redeem
}

func NewLoyaltyHandler(
	get *loyaltyuc.GetAccount,
	grant *loyaltyuc.GrantExceptional,
	redeem *loyaltyuc.Redeem,
) *LoyaltyHandler {
	return &LoyaltyHandler{get: get, grant: grant, redeem: redeem}
}

type GrantRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

type RedeemRequest struct {
	Amount        int    `json:"amount" binding:"required"`
	AppointmentID string `json:"appointment_id" binding:"required"`
	Notes         string `json:"notes"`
}

func (h *LoyaltyHandler) Get(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	view, err := h.get.Execute(c.Request.Context(), middleware.ActorFrom(c), clientID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, view)
}

func (h *LoyaltyHandler) Grant(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req GrantRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	acct, err := h.grant.Execute(c.Request.Context(), loyaltyuc.GrantInput{
		Actor:    middleware.ActorFrom(c),
		ClientID: clientID,
		Amount:   req.Amount,
		Reason:   req.Reason,
		Notes:    req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, acct)
}

func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req RedeemRequest
	if err := bindStrictJSON(c, &req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	apID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid appointment_id")
		return
	}

	acct, err := h.redeem.Execute(c.Request.Context(), loyaltyuc.RedeemInput{
		Actor:         middleware.ActorFrom(c),
		ClientID:      clientID,
		Amount:        req.Amount,
		AppointmentID: apID,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, acct)
}

func clientIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid client id")
		return uuid.Nil, false
	}
	return id, true
}
