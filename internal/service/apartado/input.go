package apartado

import (
	"net/mail"
	"strings"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
)

type ProductInput struct {
	ID     int64   `json:"id"`
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Color  string  `json:"color"`
	Imagen string  `json:"imagen"`
}

type CustomerInput struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type CreateInput struct {
	Product  *ProductInput
	Customer *CustomerInput
}

// Validate returns a *domain.ValidationError naming every missing or
// malformed field.
func (in CreateInput) Validate() error {
	var fields []string

	if in.Product == nil {
		fields = append(fields, "producto")
	} else if strings.TrimSpace(in.Product.Nombre) == "" {
		fields = append(fields, "producto.nombre")
	}

	if in.Customer == nil {
		fields = append(fields, "cliente")
	} else {
		if strings.TrimSpace(in.Customer.Nombre) == "" {
			fields = append(fields, "cliente.nombre")
		}
		if email := strings.TrimSpace(in.Customer.Email); email == "" || !validEmail(email) {
			fields = append(fields, "cliente.email")
		}
		if strings.TrimSpace(in.Customer.Telefono) == "" {
			fields = append(fields, "cliente.telefono")
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in CreateInput) customer() domain.Customer {
	return domain.Customer{
		Name:  strings.TrimSpace(in.Customer.Nombre),
		Email: NormalizeEmail(in.Customer.Email),
		Phone: strings.TrimSpace(in.Customer.Telefono),
	}
}

func (in CreateInput) product() domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:    in.Product.ID,
		Name:  strings.TrimSpace(in.Product.Nombre),
		Price: in.Product.Precio,
		Color: in.Product.Color,
		Image: in.Product.Imagen,
	}
}
