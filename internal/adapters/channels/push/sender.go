package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plant-care-service/internal/platform/httpclient"
	"plant-care-service/internal/ports/channels"
)

var ErrNotConfigured = errors.New("push sender not configured")

// Config del gateway de push de la plataforma.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Sender entrega notificaciones push vía el gateway HTTP de la
// plataforma; el gateway resuelve los device tokens del usuario.
type Sender struct {
	http   *httpclient.Client
	apiKey string
}

func NewSender(cfg Config) (*Sender, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}
	return &Sender{http: hc, apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

type pushRequest struct {
	UserID   string            `json:"user_id"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Priority int               `json:"priority"`
	Data     map[string]string `json:"data,omitempty"`
}

type pushResponse struct {
	MessageID string `json:"message_id"`
}

func (s *Sender) Send(ctx context.Context, msg channels.Message) (channels.Receipt, error) {
	if s == nil || s.http == nil || s.http.BaseURL == "" {
		return channels.Receipt{}, ErrNotConfigured
	}

	var out pushResponse
	err := s.http.DoJSON(ctx, http.MethodPost, "/v1/push", map[string]string{
		"X-Api-Key": s.apiKey,
	}, pushRequest{
		UserID:   msg.UserID,
		Title:    msg.Title,
		Body:     msg.Body,
		Priority: msg.Priority,
		Data:     msg.Metadata,
	}, &out)
	if err != nil {
		return channels.Receipt{}, fmt.Errorf("push gateway: %w", err)
	}

	return channels.Receipt{Provider: "push-gateway", ProviderID: out.MessageID}, nil
}
