package repository

import (
	"context"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apartadoColumns = `id, codigo_recogida, cliente_nombre, cliente_email, cliente_telefono,
	producto_id, producto_nombre, producto_precio, producto_color, producto_imagen,
	estado, fecha_apartado, fecha_expiracion, fecha_recogida, updated_at`

type PGApartadoRepository struct {
	db *pgxpool.Pool
}

func NewApartadoRepository(db *pgxpool.Pool) *PGApartadoRepository {
	return &PGApartadoRepository{db: db}
}

func (r *PGApartadoRepository) Create(ctx context.Context, a *domain.Apartado) error {
	const query = `
INSERT INTO apartados (codigo_recogida, cliente_nombre, cliente_email, cliente_telefono,
	producto_id, producto_nombre, producto_precio, producto_color, producto_imagen,
	estado, fecha_apartado, fecha_expiracion, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $11)
RETURNING id, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.PickupCode, a.Customer.Name, a.Customer.Email, a.Customer.Phone,
		a.Product.ID, a.Product.Name, a.Product.Price, a.Product.Color, a.Product.Image,
		a.Status, a.CreatedAt, a.ExpiresAt,
	).Scan(&a.ID, &a.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert apartado")
	}
	return nil
}

func (r *PGApartadoRepository) GetByID(ctx context.Context, id string) (*domain.Apartado, error) {
	row := r.db.QueryRow(ctx, `SELECT `+apartadoColumns+` FROM apartados WHERE id = $1`, id)
	a, err := scanApartado(row)
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get apartado")
	}
	return a, nil
}

func (r *PGApartadoRepository) GetByCode(ctx context.Context, code string) (*domain.Apartado, error) {
	row := r.db.QueryRow(ctx, `SELECT `+apartadoColumns+` FROM apartados WHERE codigo_recogida = $1 ORDER BY fecha_apartado DESC LIMIT 1`, code)
	a, err := scanApartado(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get apartado by code")
	}
	return a, nil
}

func (r *PGApartadoRepository) ListActiveByEmail(ctx context.Context, email string) ([]domain.Apartado, error) {
	return r.list(ctx, `SELECT `+apartadoColumns+` FROM apartados
WHERE cliente_email = $1 AND estado = $2
ORDER BY fecha_apartado DESC`, email, domain.ApartadoStatusActive)
}

func (r *PGApartadoRepository) ListAll(ctx context.Context) ([]domain.Apartado, error) {
	return r.list(ctx, `SELECT `+apartadoColumns+` FROM apartados ORDER BY fecha_apartado DESC`)
}

func (r *PGApartadoRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Apartado, error) {
	return r.list(ctx, `SELECT `+apartadoColumns+` FROM apartados
WHERE estado = $1 AND fecha_expiracion < $2
ORDER BY fecha_expiracion`, domain.ApartadoStatusActive, now)
}

func (r *PGApartadoRepository) Transition(ctx context.Context, id string, from []domain.ApartadoStatus, to domain.ApartadoStatus, at time.Time) (*domain.Apartado, error) {
	const query = `
UPDATE apartados
SET estado = $2,
	fecha_recogida = CASE WHEN $2 = 'recogido' THEN $3 ELSE fecha_recogida END,
	updated_at = $3
WHERE id = $1 AND (cardinality($4::text[]) = 0 OR estado = ANY($4::text[]))
RETURNING ` + apartadoColumns

	a, err := scanApartado(r.db.QueryRow(ctx, query, id, string(to), at, StatusStrings(from)))
	if err == nil {
		return a, nil
	}
	if isInvalidUUID(err) {
		return nil, domain.ErrNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(err, "transition apartado to %s", to)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM apartados WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "check apartado")
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrAlreadyProcessed
}

func (r *PGApartadoRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var inUse bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM apartados WHERE codigo_recogida = $1 AND estado = ANY($2::text[]))`,
		code, StatusStrings(domain.PendingPickupStatuses),
	).Scan(&inUse)
	if err != nil {
		return false, errors.Wrap(err, "check pickup code")
	}
	return inUse, nil
}

func (r *PGApartadoRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PGApartadoRepository) list(ctx context.Context, query string, args ...any) ([]domain.Apartado, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list apartados")
	}
	defer rows.Close()

	apartados := make([]domain.Apartado, 0)
	for rows.Next() {
		a, err := scanApartado(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan apartado")
		}
		apartados = append(apartados, *a)
	}
	return apartados, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApartado(row rowScanner) (*domain.Apartado, error) {
	var a domain.Apartado
	err := row.Scan(
		&a.ID, &a.PickupCode, &a.Customer.Name, &a.Customer.Email, &a.Customer.Phone,
		&a.Product.ID, &a.Product.Name, &a.Product.Price, &a.Product.Color, &a.Product.Image,
		&a.Status, &a.CreatedAt, &a.ExpiresAt, &a.PickedUpAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

var _ ApartadoRepository = (*PGApartadoRepository)(nil)
