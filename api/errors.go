package api

import (
	"net/http"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgMissingFields    = "Faltan datos requeridos"
	msgNotFound         = "Apartado no encontrado"
	msgAlreadyProcessed = "Apartado ya procesado"
	msgInvalidCode      = "Código inválido"
	msgProductNotFound  = "Producto no encontrado"
)

// writeError maps service errors onto status codes. Anything unrecognised is a
// 500 carrying fallback plus the innermost cause in detalles.
func writeError(c *gin.Context, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgMissingFields, "campos": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msgNotFound})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msgProductNotFound})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrAlreadyProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgAlreadyProcessed})
	case errors.Is(err, domain.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidCode})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fallback, "detalles": errors.UnwrapAll(err).Error()})
	}
}

func badRequest(c *gin.Context, fields ...string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgMissingFields, "campos": fields})
}
