package domain

import "testing"

func TestIsAdjacentCoversKingMoves(t *testing.T) {
	center := Position{X: 5, Y: 5}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			other := center.Shift(dx, dy)
			want := dx != 0 || dy != 0
			if center.IsAdjacent(other) != want {
				t.Errorf("IsAdjacent(%+v, %+v) = %v, want %v", center, other, !want, want)
			}
		}
	}

	for _, far := range []Position{{X: 7, Y: 5}, {X: 5, Y: 3}, {X: 7, Y: 7}, {X: 0, Y: 0}} {
		if center.IsAdjacent(far) {
			t.Errorf("%+v must not be adjacent to %+v", far, center)
		}
	}
}

func TestShiftDoesNotMutateReceiver(t *testing.T) {
	p := Position{X: 3, Y: 4}
	shifted := p.Shift(-1, 2)

	if shifted.X != 2 || shifted.Y != 6 {
		t.Errorf("expected (2,6), got (%d,%d)", shifted.X, shifted.Y)
	}
	if p.X != 3 || p.Y != 4 {
		t.Error("Shift must leave the receiver untouched")
	}
}
