package order

import "testing"

func TestStatusTransitionTable(t *testing.T) {
	all := []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

	allowed := map[[2]Status]bool{
		{StatusProcessing, StatusShipped}:   true,
		{StatusProcessing, StatusCancelled}: true,
		{StatusShipped, StatusDelivered}:    true,
		{StatusShipped, StatusCancelled}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminalStates(t *testing.T) {
	all := []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
	for _, to := range all {
		if StatusDelivered.CanTransitionTo(to) {
			t.Errorf("delivered must be terminal, allowed -> %s", to)
		}
		if StatusCancelled.CanTransitionTo(to) {
			t.Errorf("cancelled must be terminal, allowed -> %s", to)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "pending", "PROCESSING", "done"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}
