package bootstrap

import (
	"context"

	"github.com/ChivatosDeveloper/noir-tienda/config"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository/dynamostore"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository/gormstore"
	"github.com/ChivatosDeveloper/noir-tienda/migrations"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stores holds the repositories selected by database.driver.
type Stores struct {
	Apartados repository.ApartadoRepository
	Products  repository.ProductRepository

	closers []func() error
}

func (s *Stores) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, s.closers[i]())
	}
	return err
}

func OpenStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverGorm:
		return openGorm(ctx, cfg, logger)
	case config.DriverDynamoDB:
		return openDynamo(ctx, cfg, logger)
	}
	return nil, errors.Newf("unsupported database driver %q", cfg.Driver)
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if cfg.Migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("migrations applied")
	}
	return &Stores{
		Apartados: repository.NewApartadoRepository(pool),
		Products:  repository.NewProductRepository(pool),
		closers: []func() error{func() error {
			pool.Close()
			return nil
		}},
	}, nil
}

func openGorm(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	db, driver, err := gormstore.Open(cfg.DSN())
	if err != nil {
		return nil, err
	}
	store := gormstore.New(db)
	// A fresh sqlite file has no schema, so it is always migrated.
	if cfg.Migrate || driver != config.DriverPostgres {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info("gorm schema migrated", zap.String("dialect", driver))
	}
	return &Stores{
		Apartados: store,
		Products:  store.Products(),
		closers:   []func() error{store.Close},
	}, nil
}

func openDynamo(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	client, err := dynamostore.NewClient(ctx, cfg.DynamoDB)
	if err != nil {
		return nil, err
	}
	store := dynamostore.New(client, cfg.DynamoDB.ApartadosTable)
	if cfg.Migrate {
		if err := store.EnsureTable(ctx); err != nil {
			return nil, err
		}
		logger.Info("dynamodb table ready", zap.String("table", cfg.DynamoDB.ApartadosTable))
	}
	// The catalog is small and static; DynamoDB only stores apartados.
	return &Stores{
		Apartados: store,
		Products:  repository.NewStaticProductRepository(repository.SeedProducts()),
	}, nil
}
