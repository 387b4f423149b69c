package productos

import (
	"context"
	"strings"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"go.uber.org/zap"
)

type UseCase interface {
	List(ctx context.Context, categoria string) ([]domain.Producto, error)
	GetByID(ctx context.Context, id int64) (*domain.Producto, error)
}

type Cache interface {
	GetProducts(ctx context.Context) ([]domain.Producto, error)
	SetProducts(ctx context.Context, products []domain.Producto) error
}

type Service struct {
	repo   repository.ProductRepository
	cache  Cache
	logger *zap.Logger
}

// NewService builds the catalog service. cache may be nil.
func NewService(repo repository.ProductRepository, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns the catalog, optionally narrowed to one categoria.
func (s *Service) List(ctx context.Context, categoria string) ([]domain.Producto, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	categoria = strings.ToLower(strings.TrimSpace(categoria))
	if categoria == "" || categoria == "todos" {
		return all, nil
	}

	filtered := make([]domain.Producto, 0, len(all))
	for _, p := range all {
		if p.Categoria == categoria {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Producto, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreError(err, "get producto")
	}
	return p, nil
}

func (s *Service) all(ctx context.Context) ([]domain.Producto, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProducts(ctx)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.StoreError(err, "list productos")
	}
	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn("product cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

var _ UseCase = (*Service)(nil)
