package channels

import "context"

// Message es el contenido ya construido que un canal debe entregar.
// No depende del modelo de notificaciones para evitar ciclos de import.
type Message struct {
	NotificationID string
	UserID         string
	Title          string
	Body           string
	Priority       int
	Metadata       map[string]string
}

// Receipt es lo que el proveedor devuelve tras aceptar el envío.
type Receipt struct {
	Provider string
	// ProviderID es el identificador del mensaje en el proveedor (si lo hay).
	ProviderID string
}

// Sender es el contrato único de un canal de entrega (push/email/sms/in_app).
// Un canal nuevo se agrega implementando esta interfaz, no heredando nada.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
