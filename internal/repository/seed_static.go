package repository

import (
	"context"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
)

func (r *StaticProductRepository) List(_ context.Context) ([]domain.Producto, error) {
	out := make([]domain.Producto, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *StaticProductRepository) GetByID(_ context.Context, id int64) (*domain.Producto, error) {
	for _, p := range r.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

var _ ProductRepository = (*StaticProductRepository)(nil)
