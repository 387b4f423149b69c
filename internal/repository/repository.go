package repository

import (
	"context"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
)

type ApartadoRepository interface {
	// Create inserts a and fills in the store-assigned ID.
	Create(ctx context.Context, a *domain.Apartado) error
	GetByID(ctx context.Context, id string) (*domain.Apartado, error)
	GetByCode(ctx context.Context, code string) (*domain.Apartado, error)
	ListActiveByEmail(ctx context.Context, email string) ([]domain.Apartado, error)
	ListAll(ctx context.Context) ([]domain.Apartado, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Apartado, error)
	// Transition moves the apartado to `to` only when its current status is
	// one of `from`; an empty `from` applies unconditionally. It returns
	// domain.ErrNotFound for unknown ids and domain.ErrAlreadyProcessed
	// when the guard rejects the update.
	Transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (*domain.Apartado, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	Ping(ctx context.Context) error
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Producto, error)
	GetByID(ctx context.Context, id int64) (*domain.Producto, error)
}

// StatusStrings converts statuses for drivers that bind text arrays.
func StatusStrings(statuses []domain.ApartadoStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
