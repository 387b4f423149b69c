package repository

import (
	"context"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productoColumns = `id, nombre, precio, categoria, imagen, color, descripcion, descuento, precio_original`

type PGProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *PGProductRepository {
	return &PGProductRepository{db: db}
}

func (r *PGProductRepository) List(ctx context.Context) ([]domain.Producto, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productoColumns+` FROM productos ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list productos")
	}
	defer rows.Close()

	productos := make([]domain.Producto, 0)
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan producto")
		}
		productos = append(productos, *p)
	}
	return productos, rows.Err()
}

func (r *PGProductRepository) GetByID(ctx context.Context, id int64) (*domain.Producto, error) {
	p, err := scanProducto(r.db.QueryRow(ctx, `SELECT `+productoColumns+` FROM productos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "get producto")
	}
	return p, nil
}

func scanProducto(row rowScanner) (*domain.Producto, error) {
	var p domain.Producto
	if err := row.Scan(&p.ID, &p.Nombre, &p.Precio, &p.Categoria, &p.Imagen, &p.Color, &p.Descripcion, &p.Descuento, &p.PrecioOriginal); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ ProductRepository = (*PGProductRepository)(nil)
