package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrUnknownItem         = errors.New("artículo inexistente o desactivado")
	ErrInvalidQuantity     = errors.New("cantidad o motivo inválido")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrOverReceipt         = errors.New("recepción excede la cantidad ordenada")
	ErrPOClosed            = errors.New("orden de compra cerrada")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
)
