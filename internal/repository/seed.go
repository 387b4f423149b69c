package repository

import "github.com/ChivatosDeveloper/noir-tienda/internal/domain"

// SeedProducts returns the catalog loaded into stores that do not run the SQL
// migrations. It matches migrations/002_productos.sql.
func SeedProducts() []domain.Producto {
	discounted := func(p domain.Producto, pct int, original float64) domain.Producto {
		p.Descuento = &pct
		p.PrecioOriginal = &original
		return p
	}

	return []domain.Producto{
		{ID: 1, Nombre: "Blazer Oversized", Precio: 89.99, Categoria: "mujer", Imagen: "🧥", Color: "Negro", Descripcion: "Clásico y versátil"},
		{ID: 2, Nombre: "Vestido Midi Satén", Precio: 79.99, Categoria: "mujer", Imagen: "👗", Color: "Blanco", Descripcion: "Elegante y sofisticado"},
		{ID: 3, Nombre: "Falda Plisada Premium", Precio: 45.99, Categoria: "mujer", Imagen: "👔", Color: "Negro", Descripcion: "Efecto volumen"},
		discounted(domain.Producto{ID: 4, Nombre: "Top Crop Ribbed", Precio: 29.99, Categoria: "mujer", Imagen: "👚", Color: "Blanco", Descripcion: "Casual y cómodo"}, 40, 49.98),
		{ID: 5, Nombre: "Camisa Lino Premium", Precio: 49.99, Categoria: "hombre", Imagen: "👔", Color: "Blanco", Descripcion: "Transpirable y fresca"},
		discounted(domain.Producto{ID: 6, Nombre: "Pantalón Wide Leg", Precio: 59.99, Categoria: "hombre", Imagen: "👖", Color: "Gris", Descripcion: "Comodidad y estilo"}, 30, 85.99),
		{ID: 7, Nombre: "Camiseta Básica", Precio: 24.99, Categoria: "hombre", Imagen: "👕", Color: "Negro", Descripcion: "Imprescindible"},
		{ID: 8, Nombre: "Shorts Casuales", Precio: 39.99, Categoria: "hombre", Imagen: "🩳", Color: "Beige", Descripcion: "Perfecto para verano"},
		{ID: 9, Nombre: "Bolso Elegante", Precio: 129.99, Categoria: "accesorios", Imagen: "👜", Color: "Negro", Descripcion: "Práctico y elegante"},
		{ID: 10, Nombre: "Cinturón de Cuero", Precio: 44.99, Categoria: "accesorios", Imagen: "🪢", Color: "Marrón", Descripcion: "Complemento perfecto"},
		{ID: 11, Nombre: "Gafas de Sol", Precio: 69.99, Categoria: "accesorios", Imagen: "😎", Color: "Negro", Descripcion: "Protección UV"},
		{ID: 12, Nombre: "Bufanda Larga", Precio: 34.99, Categoria: "accesorios", Imagen: "🧣", Color: "Gris", Descripcion: "Calidez y estilo"},
		{ID: 13, Nombre: "Jersey Cashmere", Precio: 119.99, Categoria: "premium", Imagen: "🧶", Color: "Gris", Descripcion: "Lujo y comodidad"},
		{ID: 14, Nombre: "Trench Coat", Precio: 139.99, Categoria: "premium", Imagen: "🧥", Color: "Negro", Descripcion: "Diseño atemporal"},
		{ID: 15, Nombre: "Vestido de Noche", Precio: 199.99, Categoria: "premium", Imagen: "👗", Color: "Rojo", Descripcion: "Espectacular"},
		discounted(domain.Producto{ID: 16, Nombre: "Jeans Classic", Precio: 35.99, Categoria: "oferta", Imagen: "👖", Color: "Azul", Descripcion: "Básico indispensable"}, 50, 71.98),
		discounted(domain.Producto{ID: 17, Nombre: "Chaqueta Denim", Precio: 45.99, Categoria: "oferta", Imagen: "🧥", Color: "Azul", Descripcion: "Icónica"}, 35, 70.75),
	}
}

// StaticProductRepository serves a fixed catalog from memory.
type StaticProductRepository struct {
	products []domain.Producto
}

func NewStaticProductRepository(products []domain.Producto) *StaticProductRepository {
	return &StaticProductRepository{products: products}
}
