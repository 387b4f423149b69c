package gormstore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/repository"
	"github.com/cockroachdb/errors"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"

	pgInvalidTextRepresentation = "22P02"
)

// Store implements the apartado and product repositories using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn. postgres:// URLs use the postgres driver; sqlite://
// URLs and bare paths use sqlite.
func Open(dsn string) (*gorm.DB, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, "", err
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var db *gorm.DB
	switch driver {
	case driverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	case driverSQLite:
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "open %s database", driver)
	}
	return db, driver, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return driverPostgres, "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", errors.Wrap(err, "parse sqlite url")
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "apartados.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return driverSQLite, sqlitePath, err
	}
	sqlitePath, err := normalizeSQLitePath(dsn)
	return driverSQLite, sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "create sqlite directory")
	}
	return path, nil
}

// Migrate creates the tables and loads the product catalog when it is empty.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&Apartado{}, &Producto{}); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	var count int64
	if err := db.Model(&Producto{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count productos")
	}
	if count > 0 {
		return nil
	}

	seed := repository.SeedProducts()
	rows := make([]Producto, 0, len(seed))
	for _, p := range seed {
		rows = append(rows, productoFromDomain(p))
	}
	if err := db.Create(&rows).Error; err != nil {
		return errors.Wrap(err, "seed productos")
	}
	return nil
}

func (s *Store) Create(ctx context.Context, a *domain.Apartado) error {
	row := apartadoFromDomain(a)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert apartado")
	}
	a.ID = row.ID
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Apartado, error) {
	var row Apartado
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get apartado")
	}
	a := row.toDomain()
	return &a, nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*domain.Apartado, error) {
	var row Apartado
	err := s.db.WithContext(ctx).
		Where("codigo_recogida = ?", code).
		Order("fecha_apartado DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get apartado by code")
	}
	a := row.toDomain()
	return &a, nil
}

func (s *Store) ListActiveByEmail(ctx context.Context, email string) ([]domain.Apartado, error) {
	return s.list(s.db.WithContext(ctx).
		Where("cliente_email = ? AND estado = ?", email, string(domain.ApartadoStatusActive)).
		Order("fecha_apartado DESC"))
}

func (s *Store) ListAll(ctx context.Context) ([]domain.Apartado, error) {
	return s.list(s.db.WithContext(ctx).Order("fecha_apartado DESC"))
}

func (s *Store) ListOverdue(ctx context.Context, now time.Time) ([]domain.Apartado, error) {
	return s.list(s.db.WithContext(ctx).
		Where("estado = ? AND fecha_expiracion < ?", string(domain.ApartadoStatusActive), now.UTC()).
		Order("fecha_expiracion"))
}

func (s *Store) Transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (*domain.Apartado, error) {
	at = at.UTC()
	updates := map[string]any{
		"estado":     string(to),
		"updated_at": at,
	}
	if to == domain.ApartadoStatusPickedUp {
		updates["fecha_recogida"] = at
	}

	var result *gorm.DB
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&Apartado{}).Where("id = ?", id)
		if len(from) > 0 {
			q = q.Where("estado IN ?", repository.StatusStrings(from))
		}
		result = q.Updates(updates)
		return result.Error
	})
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrapf(err, "transition apartado to %s", to)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Apartado{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, errors.Wrap(err, "check apartado")
		}
		if count == 0 {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrAlreadyProcessed
	}
	return s.GetByID(ctx, id)
}

func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Apartado{}).
		Where("codigo_recogida = ? AND estado IN ?", code, repository.StatusStrings(domain.PendingPickupStatuses)).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check pickup code")
	}
	return count > 0, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) list(q *gorm.DB) ([]domain.Apartado, error) {
	var rows []Apartado
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list apartados")
	}
	out := make([]domain.Apartado, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Products exposes the catalog side of the store.
func (s *Store) Products() *ProductStore {
	return &ProductStore{db: s.db}
}

type ProductStore struct {
	db *gorm.DB
}

func (p *ProductStore) List(ctx context.Context) ([]domain.Producto, error) {
	var rows []Producto
	if err := p.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list productos")
	}
	out := make([]domain.Producto, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (p *ProductStore) GetByID(ctx context.Context, id int64) (*domain.Producto, error) {
	var row Producto
	if err := p.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "get producto")
	}
	out := row.toDomain()
	return &out, nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

var (
	_ repository.ApartadoRepository = (*Store)(nil)
	_ repository.ProductRepository  = (*ProductStore)(nil)
)
