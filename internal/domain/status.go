package domain

// Status is an order's lifecycle state. Transitions happen only through
// explicit admin action, never automatically.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// transitions is the legal-transition table. Cancelled and refunded are
// terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusShipped, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped: {StatusRefunded},
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled, StatusRefunded:
		return Status(s), true
	}
	return "", false
}

func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
