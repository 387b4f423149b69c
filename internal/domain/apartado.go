package domain

import "time"

type ApartadoStatus string

const (
	ApartadoStatusActive    ApartadoStatus = "active"
	ApartadoStatusValidated ApartadoStatus = "validado"
	ApartadoStatusPickedUp  ApartadoStatus = "recogido"
	ApartadoStatusCancelled ApartadoStatus = "cancelado"
	ApartadoStatusExpired   ApartadoStatus = "expirado"
)

// PendingPickupStatuses are the states from which a pickup can be confirmed.
var PendingPickupStatuses = []ApartadoStatus{ApartadoStatusActive, ApartadoStatusValidated}

func (s ApartadoStatus) PendingPickup() bool {
	for _, st := range PendingPickupStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s ApartadoStatus) Terminal() bool {
	switch s {
	case ApartadoStatusPickedUp, ApartadoStatusCancelled, ApartadoStatusExpired:
		return true
	}
	return false
}

type Customer struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Phone string `json:"telefono"`
}

// ProductSnapshot is the product as it was when the apartado was made.
type ProductSnapshot struct {
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
	Color string  `json:"color"`
	Image string  `json:"imagen"`
}

type Apartado struct {
	ID         string          `json:"id"`
	PickupCode string          `json:"codigo_recogida"`
	Customer   Customer        `json:"cliente"`
	Product    ProductSnapshot `json:"producto"`
	Status     ApartadoStatus  `json:"estado"`
	CreatedAt  time.Time       `json:"fecha_apartado"`
	ExpiresAt  time.Time       `json:"fecha_expiracion"`
	PickedUpAt *time.Time      `json:"fecha_recogida,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Overdue reports whether an active apartado has passed its pickup window.
func (a Apartado) Overdue(now time.Time) bool {
	return a.Status == ApartadoStatusActive && a.ExpiresAt.Before(now)
}
