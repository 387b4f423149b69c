package domain

// NotificationKind doubles as the event type published on the notifications topic.
type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "apartado_creado"
	NotificationPickup       NotificationKind = "apartado_recogido"
	NotificationCancellation NotificationKind = "apartado_cancelado"
	NotificationExpiration   NotificationKind = "apartado_expirado"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationConfirmation, NotificationPickup, NotificationCancellation, NotificationExpiration:
		return true
	}
	return false
}
