package inventory

// Transition clasifica el cambio de nivel de stock respecto al umbral.
type Transition int

const (
	Unchanged Transition = iota
	CrossedBelowThreshold
	RecoveredAboveThreshold
)

func (t Transition) String() string {
	switch t {
	case CrossedBelowThreshold:
		return "crossed_below"
	case RecoveredAboveThreshold:
		return "recovered_above"
	default:
		return "unchanged"
	}
}

// Level stock y umbral de un producto en un instante.
type Level struct {
	Stock     int
	Threshold int
}

// IsLow stock en o bajo el umbral.
func (l Level) IsLow() bool {
	return l.Stock <= l.Threshold
}

// Classify compara el nivel previo con el posterior a una mutación.
// was_low sale del stock previo, nunca de la bandera de alerta.
func Classify(before, after Level) Transition {
	wasLow := before.IsLow()
	isLow := after.IsLow()
	switch {
	case isLow && !wasLow:
		return CrossedBelowThreshold
	case !isLow && wasLow:
		return RecoveredAboveThreshold
	default:
		return Unchanged
	}
}
