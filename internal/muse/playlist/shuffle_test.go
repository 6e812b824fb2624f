package playlist

import (
	"sort"
	"testing"

	"github.com/go-test/deep"
)

func TestShufflePermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 64, 513} {
		order := Shuffle(n)
		if len(order) != n {
			t.Fatalf("Shuffle(%d) has length %d", n, len(order))
		}

		sorted := append([]int(nil), order...)
		sort.Ints(sorted)

		for i, ix := range sorted {
			if i != ix {
				t.Fatalf("Shuffle(%d) is not a permutation: %v", n, order)
			}
		}
	}
}

func TestShuffleNegative(t *testing.T) {
	if order := Shuffle(-4); len(order) != 0 {
		t.Fatalf("Shuffle(-4) = %v, expected empty", order)
	}
}

func TestShuffleOrderEnsure(t *testing.T) {
	var order ShuffleOrder

	if !order.Ensure(5) {
		t.Fatal("empty order was not generated")
	}

	kept := append(ShuffleOrder(nil), order...)

	if order.Ensure(5) {
		t.Fatal("order regenerated for an unchanged length")
	}
	if diff := deep.Equal(order, kept); diff != nil {
		t.Fatal("order changed for an unchanged length:", diff)
	}

	if !order.Ensure(4) {
		t.Fatal("order not regenerated after the length changed")
	}
	if len(order) != 4 {
		t.Fatalf("order has length %d, expected 4", len(order))
	}
}

type stepTest struct {
	name   string
	order  ShuffleOrder
	index  int
	delta  int
	expect int
}

func TestShuffleOrderStep(t *testing.T) {
	tests := []stepTest{
		{"forward", ShuffleOrder{2, 0, 1}, 2, +1, 0},
		{"forward wraps", ShuffleOrder{2, 0, 1}, 1, +1, 2},
		{"backward", ShuffleOrder{2, 0, 1}, 0, -1, 2},
		{"backward wraps", ShuffleOrder{2, 0, 1}, 2, -1, 1},
		{"missing index forward", ShuffleOrder{2, 0, 1}, 3, +1, 2},
		{"missing index backward", ShuffleOrder{2, 0, 1}, 3, -1, 1},
		{"empty", ShuffleOrder{}, 0, +1, -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.order.Step(test.index, test.delta); got != test.expect {
				t.Errorf("Step(%d, %d) = %d, expected %d", test.index, test.delta, got, test.expect)
			}
		})
	}
}

func TestShuffleOrderRoundTrip(t *testing.T) {
	var order ShuffleOrder
	order.Ensure(10)

	for ix := 0; ix < 10; ix++ {
		next := order.Step(ix, +1)
		if back := order.Step(next, -1); back != ix {
			t.Errorf("stepping %d forward then back gave %d", ix, back)
		}
	}
}
