// Package guide contiene las reglas de dominio de la guía de envío: ciclo de vida,
// pesos y formato del número de rastreo.
package guide

import (
	"fmt"
	"time"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// Sequence orden único de estados: generada → recolectada → en_transito → entregada.
var Sequence = []entity.GuideStatus{
	entity.GuideStatusGenerada,
	entity.GuideStatusRecolectada,
	entity.GuideStatusEnTransito,
	entity.GuideStatusEntregada,
}

// InitialStatus estado con el que nace toda guía.
const InitialStatus = entity.GuideStatusGenerada

// Next devuelve el único estado siguiente permitido. ok=false en el estado terminal o desconocido.
func Next(from entity.GuideStatus) (entity.GuideStatus, bool) {
	for i, s := range Sequence {
		if s == from && i+1 < len(Sequence) {
			return Sequence[i+1], true
		}
	}
	return "", false
}

// IsTerminal indica si el estado no admite transiciones.
func IsTerminal(s entity.GuideStatus) bool {
	return s == entity.GuideStatusEntregada
}

// IsValidStatus valida el estado contra la secuencia.
func IsValidStatus(s entity.GuideStatus) bool {
	for _, v := range Sequence {
		if v == s {
			return true
		}
	}
	return false
}

// ValidateTransition exige que to sea exactamente el siguiente estado de from.
func ValidateTransition(from, to entity.GuideStatus) error {
	next, ok := Next(from)
	if !ok || next != to {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// Start inicializa estado e historial de una guía recién creada.
func Start(g *entity.Guide, userID string, at time.Time) {
	g.Status = InitialStatus
	g.History = []entity.GuideHistoryEntry{{Status: InitialStatus, At: at, Note: "guía generada", UserID: userID}}
}

// Advance mueve la guía al estado to y agrega la entrada al historial.
// Si la transición no es válida la guía queda intacta.
func Advance(g *entity.Guide, to entity.GuideStatus, note, userID string, at time.Time) error {
	if err := ValidateTransition(g.Status, to); err != nil {
		return err
	}
	g.Status = to
	g.History = append(g.History, entity.GuideHistoryEntry{Status: to, At: at, Note: note, UserID: userID})
	g.UpdatedAt = at
	return nil
}

// HistoryIsPrefix verifica que el historial sea un prefijo de Sequence y termine en el estado actual.
func HistoryIsPrefix(g *entity.Guide) bool {
	if len(g.History) == 0 || len(g.History) > len(Sequence) {
		return false
	}
	for i, h := range g.History {
		if h.Status != Sequence[i] {
			return false
		}
	}
	return g.History[len(g.History)-1].Status == g.Status
}
