package rules

import "voyager.com/hearts/internal/seat"

const (
	PassLeft   = "left"
	PassRight  = "right"
	PassAcross = "across"
	PassHold   = "hold"

	PassCount = 3
)

// PassDirection returns the passing direction for a 1-based round number.
// Directions cycle left, right, across, hold.
func PassDirection(round int) string {
	if round < 1 {
		return ""
	}
	switch (round - 1) % 4 {
	case 0:
		return PassLeft
	case 1:
		return PassRight
	case 2:
		return PassAcross
	}
	return PassHold
}

// PassRecipient returns the user who receives cards passed by senderID.
// Seat numbers are 1-based and increase to the left.
func PassRecipient(players []seat.Seat, senderID int, direction string) (seat.Seat, bool) {
	sender, ok := seat.Find(players, senderID)
	if !ok || len(players) != seat.TableSize {
		return seat.Seat{}, false
	}
	n := seat.TableSize
	var target int
	switch direction {
	case PassLeft:
		target = sender.SeatNumber%n + 1
	case PassRight:
		target = (sender.SeatNumber-2+n)%n + 1
	case PassAcross:
		target = (sender.SeatNumber+1)%n + 1
	default:
		return seat.Seat{}, false
	}
	for _, p := range players {
		if p.SeatNumber == target {
			return p, true
		}
	}
	return seat.Seat{}, false
}
