package booking

import "fmt"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCancelled: true, StatusCompleted: true},
	StatusCancelled: {},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return st, nil
}

// IsActive reports whether the status takes part in overlap checks.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// checkTransition maps an illegal move onto the error kind callers match on.
func checkTransition(from, to Status) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: reservation is %s", ErrAlreadyTerminal, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
