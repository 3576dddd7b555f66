package service

import (
	"testing"

	"github.com/khornSaokhouch/server/internal/constants"
)

func TestOrderTransitions(t *testing.T) {
	allowed := [][2]string{
		{constants.OrderStatusPending, constants.OrderStatusPaid},
		{constants.OrderStatusPending, constants.OrderStatusCancelled},
		{constants.OrderStatusPaid, constants.OrderStatusPreparing},
		{constants.OrderStatusPaid, constants.OrderStatusCancelled},
		{constants.OrderStatusPreparing, constants.OrderStatusReady},
		{constants.OrderStatusReady, constants.OrderStatusCompleted},
	}
	for _, c := range allowed {
		if !isOrderTransitionAllowed(c[0], c[1]) {
			t.Fatalf("expected %s -> %s to be allowed", c[0], c[1])
		}
	}

	denied := [][2]string{
		{constants.OrderStatusPending, constants.OrderStatusReady},
		{constants.OrderStatusPaid, constants.OrderStatusPending},
		{constants.OrderStatusCompleted, constants.OrderStatusPending},
		{constants.OrderStatusCancelled, constants.OrderStatusPaid},
		{constants.OrderStatusReady, constants.OrderStatusCancelled},
		{constants.OrderStatusCompleted, constants.OrderStatusCompleted},
	}
	for _, c := range denied {
		if isOrderTransitionAllowed(c[0], c[1]) {
			t.Fatalf("expected %s -> %s to be denied", c[0], c[1])
		}
	}
}
