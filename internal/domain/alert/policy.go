// Package alert decide si una transición de stock dispara, omite o resetea
// la alerta de stock bajo. No hace I/O.
package alert

import "github.com/jhoicas/inventario-pyme/internal/domain/inventory"

// Action resultado de la política de deduplicación.
type Action int

const (
	None Action = iota
	Fire
	Reset
)

func (a Action) String() string {
	switch a {
	case Fire:
		return "fire"
	case Reset:
		return "reset"
	default:
		return "none"
	}
}

// Decide aplica la tabla de deduplicación:
//
//	CrossedBelowThreshold + sin alerta  -> Fire
//	CrossedBelowThreshold + con alerta  -> None
//	RecoveredAboveThreshold             -> Reset
//	Unchanged                           -> None
func Decide(t inventory.Transition, alertSentBefore bool) Action {
	switch t {
	case inventory.CrossedBelowThreshold:
		if alertSentBefore {
			return None
		}
		return Fire
	case inventory.RecoveredAboveThreshold:
		return Reset
	default:
		return None
	}
}

// DecideForState igual que Decide, pero si el stock sigue bajo sin alerta enviada
// (un envío anterior falló) vuelve a disparar.
func DecideForState(t inventory.Transition, alertSentBefore, lowAfter bool) Action {
	if a := Decide(t, alertSentBefore); a != None {
		return a
	}
	if t == inventory.Unchanged && lowAfter && !alertSentBefore {
		return Fire
	}
	return None
}
