package seat

import "sort"

// TableSize is the number of seats at an active Hearts table.
const TableSize = 4

// Seat is one authoritative roster entry.
type Seat struct {
	UserID     int    `json:"userId"`
	Username   string `json:"username"`
	SeatNumber int    `json:"seatNumber"`
	TotalScore int    `json:"totalScore"`
	CardCount  int    `json:"cardCount"`
}

// Rotate orders the roster by seat number and rotates it so the viewer is
// at index 0. The second return value is false when the viewer is not in the
// roster; the roster is then returned unmodified and the caller must treat the
// table as not ready. The input slice is never mutated.
func Rotate(players []Seat, viewerID int) ([]Seat, bool) {
	sorted := make([]Seat, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SeatNumber < sorted[j].SeatNumber
	})

	idx := -1
	for i, p := range sorted {
		if p.UserID == viewerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		unmodified := make([]Seat, len(players))
		copy(unmodified, players)
		return unmodified, false
	}

	rotated := make([]Seat, 0, len(sorted))
	rotated = append(rotated, sorted[idx:]...)
	rotated = append(rotated, sorted[:idx]...)
	return rotated, true
}

// Find returns the seat of the user, if present.
func Find(players []Seat, userID int) (Seat, bool) {
	for _, p := range players {
		if p.UserID == userID {
			return p, true
		}
	}
	return Seat{}, false
}

// IsComplete reports whether the roster has exactly TableSize seats with
// unique, contiguous seat numbers.
func IsComplete(players []Seat) bool {
	if len(players) != TableSize {
		return false
	}
	numbers := make([]int, len(players))
	for i, p := range players {
		numbers[i] = p.SeatNumber
	}
	sort.Ints(numbers)
	for i := 1; i < len(numbers); i++ {
		if numbers[i] != numbers[i-1]+1 {
			return false
		}
	}
	return true
}
