package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound         = errors.New("apartado no encontrado")
	ErrInvalidState     = errors.New("apartado no está pendiente de recogida")
	ErrAlreadyProcessed = errors.New("apartado ya procesado")
	ErrCodeMismatch     = errors.New("código de recogida inválido")
	ErrCodesExhausted   = errors.New("no se pudo generar un código de recogida único")
	ErrProductNotFound  = errors.New("producto no encontrado")

	// ErrStore marks failures of the backing store or other dependencies.
	ErrStore = errors.New("store failure")
)

// ValidationError lists the request fields that are missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "faltan datos requeridos: " + strings.Join(e.Fields, ", ")
}

// StoreError wraps err with op and marks it as a store failure. Domain
// sentinels pass through unmarked so callers can still match them.
func StoreError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrProductNotFound) {
		return err
	}
	return errors.Mark(errors.Wrap(err, op), ErrStore)
}
