package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/ChivatosDeveloper/noir-tienda/internal/service/apartado"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

type ApartadoHandler struct {
	service apartado.UseCase
}

// createApartadoRequest accepts both the Spanish keys used by the storefront
// and the English ones used by older clients.
type createApartadoRequest struct {
	Producto *apartado.ProductInput  `json:"producto"`
	Product  *apartado.ProductInput  `json:"product"`
	Cliente  *apartado.CustomerInput `json:"cliente"`
	Customer *apartado.CustomerInput `json:"customer"`
}

func (r createApartadoRequest) input() apartado.CreateInput {
	in := apartado.CreateInput{Product: r.Producto, Customer: r.Cliente}
	if in.Product == nil {
		in.Product = r.Product
	}
	if in.Customer == nil {
		in.Customer = r.Customer
	}
	return in
}

type pickupRequest struct {
	Codigo string `json:"codigo"`
	Code   string `json:"code"`
}

func (r pickupRequest) code() string {
	if strings.TrimSpace(r.Codigo) != "" {
		return r.Codigo
	}
	return r.Code
}

type createdApartado struct {
	ID             string `json:"id"`
	CodigoRecogida string `json:"codigoRecogida"`
	Estado         string `json:"estado"`
}

// apartadoRow mirrors the persisted column layout.
type apartadoRow struct {
	ID              string     `json:"id"`
	CodigoRecogida  string     `json:"codigo_recogida"`
	ClienteNombre   string     `json:"cliente_nombre"`
	ClienteEmail    string     `json:"cliente_email"`
	ClienteTelefono string     `json:"cliente_telefono"`
	ProductoID      int64      `json:"producto_id"`
	ProductoNombre  string     `json:"producto_nombre"`
	ProductoPrecio  float64    `json:"producto_precio"`
	ProductoColor   string     `json:"producto_color"`
	ProductoImagen  string     `json:"producto_imagen"`
	Estado          string     `json:"estado"`
	FechaApartado   time.Time  `json:"fecha_apartado"`
	FechaExpiracion time.Time  `json:"fecha_expiracion"`
	FechaRecogida   *time.Time `json:"fecha_recogida"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toRow(a domain.Apartado) apartadoRow {
	return apartadoRow{
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
		FechaApartado:   a.CreatedAt,
		FechaExpiracion: a.ExpiresAt,
		FechaRecogida:   a.PickedUpAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toRows(list []domain.Apartado) []apartadoRow {
	rows := make([]apartadoRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, toRow(a))
	}
	return rows
}

func NewApartadoHandler(service apartado.UseCase) *ApartadoHandler {
	return &ApartadoHandler{service: service}
}

// Register mounts the apartado routes. staff guards the routes meant for
// store employees.
func (h *ApartadoHandler) Register(router *gin.RouterGroup, staff ...gin.HandlerFunc) {
	router.POST("", h.create)
	router.GET("/:email", h.listByEmail)

	employees := router.Group("", staff...)
	employees.GET("", h.listAll)
	employees.POST("/:id/recoger", h.confirmPickup)
	employees.DELETE("/:id", h.cancel)
}

func (h *ApartadoHandler) create(c *gin.Context) {
	var req createApartadoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "body")
		return
	}

	a, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err, "Error al guardar en base de datos")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"apartado": createdApartado{
			ID:             a.ID,
			CodigoRecogida: a.PickupCode,
			Estado:         string(a.Status),
		},
		"mensaje": "Apartado realizado con éxito. Revisa tu email.",
	})
}

func (h *ApartadoHandler) listByEmail(c *gin.Context) {
	list, err := h.service.ListByCustomer(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err, "Error al obtener apartados")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "apartados": toRows(list)})
}

func (h *ApartadoHandler) listAll(c *gin.Context) {
	if code := strings.TrimSpace(c.Query("codigo")); code != "" {
		a, err := h.service.FindByCode(c.Request.Context(), code)
		if err != nil {
			writeError(c, err, "Error al obtener apartados")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "total": 1, "apartados": []apartadoRow{toRow(*a)}})
		return
	}

	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err, "Error al obtener apartados")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(list), "apartados": toRows(list)})
}

func (h *ApartadoHandler) confirmPickup(c *gin.Context) {
	var req pickupRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "body")
		return
	}
	code := strings.TrimSpace(req.code())
	if code == "" {
		badRequest(c, "codigo")
		return
	}

	a, err := h.service.ConfirmPickup(c.Request.Context(), c.Param("id"), code)
	if err != nil {
		writeError(c, err, "Error al confirmar recogida")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Producto recogido con éxito", "apartado": toRow(*a)})
}

func (h *ApartadoHandler) cancel(c *gin.Context) {
	if _, err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Error al cancelar apartado")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mensaje": "Apartado cancelado"})
}
