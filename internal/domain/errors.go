package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrBusy               = errors.New("la empresa tiene otra operación en curso")

	// Libro de guías (saldo por empresa).
	ErrInsufficientBalance   = errors.New("guías disponibles insuficientes")
	ErrPaymentExceedsBalance = errors.New("el pago excede el saldo pendiente")

	// Solicitudes de compra.
	ErrAlreadyResolved = errors.New("la solicitud ya fue resuelta")

	// Ciclo de vida de la guía.
	ErrInvalidTransition = errors.New("transición de estado inválida")

	// Pagos.
	ErrAlreadyDeleted = errors.New("el pago ya fue eliminado")
)
