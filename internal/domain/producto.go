package domain

type Producto struct {
	ID             int64    `json:"id"`
	Nombre         string   `json:"nombre"`
	Precio         float64  `json:"precio"`
	Categoria      string   `json:"categoria"`
	Imagen         string   `json:"imagen"`
	Color          string   `json:"color"`
	Descripcion    string   `json:"descripcion"`
	Descuento      *int     `json:"descuento,omitempty"`
	PrecioOriginal *float64 `json:"precioOriginal,omitempty"`
}

// Snapshot copies the fields an apartado keeps about the product.
func (p Producto) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:    p.ID,
		Name:  p.Nombre,
		Price: p.Precio,
		Color: p.Color,
		Image: p.Imagen,
	}
}
