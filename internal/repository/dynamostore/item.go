package dynamostore

import (
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
)

// timeLayout is fixed width so stored timestamps compare correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type apartadoItem struct {
	ID              string  `dynamodbav:"id"`
	CodigoRecogida  string  `dynamodbav:"codigo_recogida"`
	ClienteNombre   string  `dynamodbav:"cliente_nombre"`
	ClienteEmail    string  `dynamodbav:"cliente_email"`
	ClienteTelefono string  `dynamodbav:"cliente_telefono"`
	ProductoID      int64   `dynamodbav:"producto_id"`
	ProductoNombre  string  `dynamodbav:"producto_nombre"`
	ProductoPrecio  float64 `dynamodbav:"producto_precio"`
	ProductoColor   string  `dynamodbav:"producto_color"`
	ProductoImagen  string  `dynamodbav:"producto_imagen"`
	Estado          string  `dynamodbav:"estado"`
	FechaApartado   string  `dynamodbav:"fecha_apartado"`
	FechaExpiracion string  `dynamodbav:"fecha_expiracion"`
	FechaRecogida   string  `dynamodbav:"fecha_recogida,omitempty"`
	UpdatedAt       string  `dynamodbav:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t.UTC()
}

func toItem(a *domain.Apartado) apartadoItem {
	it := apartadoItem{
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
		FechaApartado:   formatTime(a.CreatedAt),
		FechaExpiracion: formatTime(a.ExpiresAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
	}
	if a.PickedUpAt != nil {
		it.FechaRecogida = formatTime(*a.PickedUpAt)
	}
	return it
}

func fromItem(it apartadoItem) domain.Apartado {
	a := domain.Apartado{
		ID:         it.ID,
		PickupCode: it.CodigoRecogida,
		Customer: domain.Customer{
			Name:  it.ClienteNombre,
			Email: it.ClienteEmail,
			Phone: it.ClienteTelefono,
		},
		Product: domain.ProductSnapshot{
			ID:    it.ProductoID,
			Name:  it.ProductoNombre,
			Price: it.ProductoPrecio,
			Color: it.ProductoColor,
			Image: it.ProductoImagen,
		},
		Status:    domain.ApartadoStatus(it.Estado),
		CreatedAt: parseTime(it.FechaApartado),
		ExpiresAt: parseTime(it.FechaExpiracion),
		UpdatedAt: parseTime(it.UpdatedAt),
	}
	if it.FechaRecogida != "" {
		t := parseTime(it.FechaRecogida)
		a.PickedUpAt = &t
	}
	return a
}
