package seat

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func roster() []Seat {
	// Deliberately out of seat order.
	return []Seat{
		{UserID: 30, Username: "carol", SeatNumber: 3},
		{UserID: 10, Username: "alice", SeatNumber: 1},
		{UserID: 40, Username: "dave", SeatNumber: 4},
		{UserID: 20, Username: "bob", SeatNumber: 2},
	}
}

func userIDs(seats []Seat) []int {
	ids := make([]int, len(seats))
	for i, s := range seats {
		ids[i] = s.UserID
	}
	return ids
}

func TestRotate(t *testing.T) {
	testCases := []struct {
		viewer   int
		expected []int
	}{
		{viewer: 10, expected: []int{10, 20, 30, 40}},
		{viewer: 20, expected: []int{20, 30, 40, 10}},
		{viewer: 30, expected: []int{30, 40, 10, 20}},
		{viewer: 40, expected: []int{40, 10, 20, 30}},
	}
	for _, tc := range testCases {
		rotated, ok := Rotate(roster(), tc.viewer)
		if !ok {
			t.Fatalf("Rotate(viewer=%d) reported viewer missing", tc.viewer)
		}
		if diff := cmp.Diff(tc.expected, userIDs(rotated)); diff != "" {
			t.Errorf("Rotate(viewer=%d) mismatch (-want +got):\n%s", tc.viewer, diff)
		}
	}
}

func TestRotateIsCyclicPermutation(t *testing.T) {
	in := roster()
	for _, viewer := range userIDs(in) {
		rotated, _ := Rotate(in, viewer)
		if rotated[0].UserID != viewer {
			t.Errorf("rotated[0] = %d, expected viewer %d", rotated[0].UserID, viewer)
		}
		got := userIDs(rotated)
		want := userIDs(in)
		sort.Ints(got)
		sort.Ints(want)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("seats changed by rotation (-want +got):\n%s", diff)
		}
	}
}

func TestRotateViewerMissing(t *testing.T) {
	in := roster()
	out, ok := Rotate(in, 99)
	if ok {
		t.Fatal("Rotate reported a missing viewer as found")
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("roster changed although viewer is missing (-want +got):\n%s", diff)
	}
}

func TestRotateDoesNotMutateInput(t *testing.T) {
	in := roster()
	before := append([]Seat(nil), in...)
	Rotate(in, 40)
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestIsComplete(t *testing.T) {
	if !IsComplete(roster()) {
		t.Error("full roster reported incomplete")
	}
	if IsComplete(roster()[:3]) {
		t.Error("three seats reported complete")
	}
	gap := roster()
	gap[0].SeatNumber = 7
	if IsComplete(gap) {
		t.Error("non-contiguous seats reported complete")
	}
}
