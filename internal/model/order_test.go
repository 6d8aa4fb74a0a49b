package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderPending, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderPending, false},
		{OrderCancelled, OrderPaid, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderCancelled, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, OrderPending.HoldsSeats())
	assert.True(t, OrderPaid.HoldsSeats())
	assert.False(t, OrderCancelled.HoldsSeats())
	assert.False(t, OrderStatus("expired").Valid())
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("OWNER"))
}
