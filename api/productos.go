package api

import (
	"net/http"
	"strconv"

	"github.com/ChivatosDeveloper/noir-tienda/internal/service/productos"
	"github.com/gin-gonic/gin"
)

type ProductoHandler struct {
	service productos.UseCase
}

func NewProductoHandler(service productos.UseCase) *ProductoHandler {
	return &ProductoHandler{service: service}
}

func (h *ProductoHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *ProductoHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("categoria"))
	if err != nil {
		writeError(c, err, "Error al obtener productos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "productos": list})
}

func (h *ProductoHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ID de producto inválido"})
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Error al obtener producto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "producto": p})
}
