package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/institute-scheduler/internal/httperr"
	"github.com/BruksfildServices01/institute-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/institute-scheduler/internal/metrics"
	reminderuc "github.com/BruksfildServices01/institute-scheduler/internal/usecase/reminder"
)

type WebhookHandler struct {
	reply *reminderuc.HandleReply
}

func NewWebhookHandler(reply *reminderuc.HandleReply) *WebhookHandler {
	return &WebhookHandler{reply: reply}
}

// InboundMessageRequest é o corpo que o gateway de mensagens envia.
type InboundMessageRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	From      string `json:"from" binding:"required"`
	Text      string `json:"text"`
	Channel   string `json:"channel"`
}

// Messages recebe respostas aos lembretes. O gateway reentrega em caso
// de timeout, então a mesma message_id sempre devolve 200.
func (h *WebhookHandler) Messages(c *gin.Context) {
	var req InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeValidation, "invalid request")
		return
	}

	res, err := h.reply.Execute(c.Request.Context(), reminderuc.ReplyInput{
		MessageID: req.MessageID,
		From:      req.From,
		Text:      req.Text,
		Channel:   req.Channel,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	if !res.Duplicate {
		metrics.InboundReplies.WithLabelValues(string(res.Intent)).Inc()
	}
	httpresp.OK(c, res)
}
