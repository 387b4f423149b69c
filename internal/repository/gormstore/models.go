package gormstore

import (
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Apartado mirrors the apartados table.
type Apartado struct {
	ID              string     `gorm:"type:uuid;primaryKey"`
	CodigoRecogida  string     `gorm:"not null;index:idx_apartados_codigo"`
	ClienteNombre   string     `gorm:"not null"`
	ClienteEmail    string     `gorm:"not null;index:idx_apartados_cliente_email"`
	ClienteTelefono string     `gorm:"not null"`
	ProductoID      int64      `gorm:"not null"`
	ProductoNombre  string     `gorm:"not null"`
	ProductoPrecio  float64    `gorm:"type:numeric(10,2);not null"`
	ProductoColor   string     `gorm:"not null;default:''"`
	ProductoImagen  string     `gorm:"not null;default:''"`
	Estado          string     `gorm:"not null;index:idx_apartados_estado_expiracion,priority:1"`
	FechaApartado   time.Time  `gorm:"not null"`
	FechaExpiracion time.Time  `gorm:"not null;index:idx_apartados_estado_expiracion,priority:2"`
	FechaRecogida   *time.Time `gorm:""`
	UpdatedAt       time.Time  `gorm:"not null"`
}

func (Apartado) TableName() string { return "apartados" }

func (a *Apartado) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Producto mirrors the productos table.
type Producto struct {
	ID             int64    `gorm:"primaryKey;autoIncrement:false"`
	Nombre         string   `gorm:"not null"`
	Precio         float64  `gorm:"type:numeric(10,2);not null"`
	Categoria      string   `gorm:"not null;index"`
	Imagen         string   `gorm:"not null;default:''"`
	Color          string   `gorm:"not null;default:''"`
	Descripcion    string   `gorm:"not null;default:''"`
	Descuento      *int     `gorm:""`
	PrecioOriginal *float64 `gorm:"type:numeric(10,2)"`
}

func (Producto) TableName() string { return "productos" }

func apartadoFromDomain(a *domain.Apartado) Apartado {
	return Apartado{
		ID:              a.ID,
		CodigoRecogida:  a.PickupCode,
		ClienteNombre:   a.Customer.Name,
		ClienteEmail:    a.Customer.Email,
		ClienteTelefono: a.Customer.Phone,
		ProductoID:      a.Product.ID,
		ProductoNombre:  a.Product.Name,
		ProductoPrecio:  a.Product.Price,
		ProductoColor:   a.Product.Color,
		ProductoImagen:  a.Product.Image,
		Estado:          string(a.Status),
		FechaApartado:   a.CreatedAt.UTC(),
		FechaExpiracion: a.ExpiresAt.UTC(),
		FechaRecogida:   a.PickedUpAt,
		UpdatedAt:       a.CreatedAt.UTC(),
	}
}

func (m Apartado) toDomain() domain.Apartado {
	a := domain.Apartado{
		ID:         m.ID,
		PickupCode: m.CodigoRecogida,
		Customer: domain.Customer{
			Name:  m.ClienteNombre,
			Email: m.ClienteEmail,
			Phone: m.ClienteTelefono,
		},
		Product: domain.ProductSnapshot{
			ID:    m.ProductoID,
			Name:  m.ProductoNombre,
			Price: m.ProductoPrecio,
			Color: m.ProductoColor,
			Image: m.ProductoImagen,
		},
		Status:    domain.ApartadoStatus(m.Estado),
		CreatedAt: m.FechaApartado.UTC(),
		ExpiresAt: m.FechaExpiracion.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.FechaRecogida != nil {
		t := m.FechaRecogida.UTC()
		a.PickedUpAt = &t
	}
	return a
}

func productoFromDomain(p domain.Producto) Producto {
	return Producto{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Precio:         p.Precio,
		Categoria:      p.Categoria,
		Imagen:         p.Imagen,
		Color:          p.Color,
		Descripcion:    p.Descripcion,
		Descuento:      p.Descuento,
		PrecioOriginal: p.PrecioOriginal,
	}
}

func (m Producto) toDomain() domain.Producto {
	return domain.Producto{
		ID:             m.ID,
		Nombre:         m.Nombre,
		Precio:         m.Precio,
		Categoria:      m.Categoria,
		Imagen:         m.Imagen,
		Color:          m.Color,
		Descripcion:    m.Descripcion,
		Descuento:      m.Descuento,
		PrecioOriginal: m.PrecioOriginal,
	}
}
