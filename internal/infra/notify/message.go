package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MessageGateway fala com um serviço HTTP de mensagens (WhatsApp/SMS)
// que expõe POST /send/message {phone, message}.
type MessageGateway struct {
	baseURL string
	client  *http.Client
}

func NewMessageGateway(baseURL string) *MessageGateway {
	return &MessageGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (g *MessageGateway) Send(ctx context.Context, contact, template string, params map[string]any) error {
	if contact == "" {
		return errors.New("message: empty phone")
	}

	_, body, err := Render(template, params)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sendMessageRequest{Phone: contact, Message: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/send/message", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("message gateway: status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

var _ Gateway = (*MessageGateway)(nil)
