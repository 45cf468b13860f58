package sms

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

var ErrNotConfigured = errors.New("sms sender not configured")

// Config del gateway SMS.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Sender entrega por SMS vía gateway HTTP; el gateway resuelve el
// número del usuario. El cuerpo se trunca: SMS no es el canal para
// párrafos.
type Sender struct {
	http   *httpclient.Client
	apiKey string
}

const maxSMSLen = 320

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

type smsRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type smsResponse struct {
	MessageID string `json:"message_id"`
}

func (s *Sender) Send(ctx context.Context, msg channels.Message) (channels.Receipt, error) {
	if s == nil || s.http == nil || s.http.BaseURL == "" {
		return channels.Receipt{}, ErrNotConfigured
	}

	text := msg.Title + " " + msg.Body
	if len(text) > maxSMSLen {
		text = text[:maxSMSLen]
	}

	var out smsResponse
	err := s.http.DoJSON(ctx, http.MethodPost, "/v1/sms", map[string]string{
		"X-Api-Key": s.apiKey,
	}, smsRequest{
		UserID: msg.UserID,
		Text:   text,
	}, &out)
	if err != nil {
		return channels.Receipt{}, fmt.Errorf("sms gateway: %w", err)
	}

	return channels.Receipt{Provider: "sms-gateway", ProviderID: out.MessageID}, nil
}
