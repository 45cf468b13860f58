package inapp

import (
	"context"

	"plant-care-service/internal/ports/channels"
)

// Sender del canal in_app. La notificación ya está persistida y la app
// la lee del historial, así que entregar "in app" no requiere salida:
// siempre tiene éxito. Mantenerlo como Sender deja el canal en el
// mismo pipeline que los demás (delivery log incluido).
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, msg channels.Message) (channels.Receipt, error) {
	return channels.Receipt{Provider: "in-app"}, nil
}
