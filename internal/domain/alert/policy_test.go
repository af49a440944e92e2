package alert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-pyme/internal/domain/alert"
	"github.com/jhoicas/inventario-pyme/internal/domain/inventory"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		transition inventory.Transition
		sent       bool
		want       alert.Action
	}{
		{inventory.CrossedBelowThreshold, false, alert.Fire},
		{inventory.CrossedBelowThreshold, true, alert.None},
		{inventory.RecoveredAboveThreshold, false, alert.Reset},
		{inventory.RecoveredAboveThreshold, true, alert.Reset},
		{inventory.Unchanged, false, alert.None},
		{inventory.Unchanged, true, alert.None},
	}
	for _, tc := range cases {
		t.Run(tc.transition.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, alert.Decide(tc.transition, tc.sent))
		})
	}
}

func TestDecideForState_ReintentaSiQuedaBajoSinAlerta(t *testing.T) {
	assert.Equal(t, alert.Fire, alert.DecideForState(inventory.Unchanged, false, true))
	assert.Equal(t, alert.None, alert.DecideForState(inventory.Unchanged, true, true))
	assert.Equal(t, alert.None, alert.DecideForState(inventory.Unchanged, false, false))
	assert.Equal(t, alert.Reset, alert.DecideForState(inventory.RecoveredAboveThreshold, true, false))
	assert.Equal(t, alert.None, alert.DecideForState(inventory.CrossedBelowThreshold, true, true))
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "fire", alert.Fire.String())
	assert.Equal(t, "reset", alert.Reset.String())
	assert.Equal(t, "none", alert.None.String())
}
