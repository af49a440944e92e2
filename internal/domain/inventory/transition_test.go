package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-pyme/internal/domain/inventory"
)

func TestClassify_UmbralFijo(t *testing.T) {
	cases := []struct {
		name      string
		before    int
		after     int
		threshold int
		want      inventory.Transition
	}{
		{"sano a bajo", 15, 9, 10, inventory.CrossedBelowThreshold},
		{"sano a justo el umbral", 15, 10, 10, inventory.CrossedBelowThreshold},
		{"bajo sigue bajo", 9, 8, 10, inventory.Unchanged},
		{"bajo a sano", 9, 20, 10, inventory.RecoveredAboveThreshold},
		{"umbral a sano", 10, 11, 10, inventory.RecoveredAboveThreshold},
		{"sano sigue sano", 30, 20, 10, inventory.Unchanged},
		{"sin cambio", 10, 10, 10, inventory.Unchanged},
		{"umbral cero, stock cero", 1, 0, 0, inventory.CrossedBelowThreshold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := inventory.Level{Stock: tc.before, Threshold: tc.threshold}
			after := inventory.Level{Stock: tc.after, Threshold: tc.threshold}
			assert.Equal(t, tc.want, inventory.Classify(before, after))
		})
	}
}

// Al cambiar el umbral, was_low usa el umbral anterior e is_low el nuevo.
func TestClassify_CambioDeUmbral(t *testing.T) {
	before := inventory.Level{Stock: 12, Threshold: 10}

	assert.Equal(t, inventory.CrossedBelowThreshold,
		inventory.Classify(before, inventory.Level{Stock: 12, Threshold: 15}))
	assert.Equal(t, inventory.Unchanged,
		inventory.Classify(before, inventory.Level{Stock: 12, Threshold: 5}))

	low := inventory.Level{Stock: 8, Threshold: 10}
	assert.Equal(t, inventory.RecoveredAboveThreshold,
		inventory.Classify(low, inventory.Level{Stock: 8, Threshold: 5}))
}

func TestTransition_String(t *testing.T) {
	assert.Equal(t, "crossed_below", inventory.CrossedBelowThreshold.String())
	assert.Equal(t, "recovered_above", inventory.RecoveredAboveThreshold.String())
	assert.Equal(t, "unchanged", inventory.Unchanged.String())
}
