package engine

import "fmt"

// OrdersKind enumerates the standing orders a unit can carry.
type OrdersKind uint8

const (
	OrdersSentry OrdersKind = iota
	OrdersSkip
	OrdersGoTo
	OrdersExplore
)

func (k OrdersKind) String() string {
	switch k {
	case OrdersSentry:
		return "sentry"
	case OrdersSkip:
		return "skip"
	case OrdersGoTo:
		return "go to"
	case OrdersExplore:
		return "explore"
	default:
		return "unknown orders"
	}
}

// Orders is a standing instruction attached to a unit. Dest is only
// meaningful for go-to orders.
type Orders struct {
	Kind OrdersKind
	Dest Location
}

func (o Orders) String() string {
	if o.Kind == OrdersGoTo {
		return fmt.Sprintf("go to %s", o.Dest)
	}
	return o.Kind.String()
}

// OrdersStatus reports whether standing orders finished this turn.
type OrdersStatus uint8

const (
	OrdersInProgress OrdersStatus = iota
	OrdersCompleted
)

func (s OrdersStatus) String() string {
	if s == OrdersCompleted {
		return "completed"
	}
	return "in progress"
}

// OrdersOutcome is the result of carrying out a unit's orders for one
// turn: any movement performed and whether the orders are finished.
type OrdersOutcome struct {
	UnitID UnitID
	Orders Orders
	Move   *Move
	Status OrdersStatus
}

// Completed reports whether the orders finished.
func (o *OrdersOutcome) Completed() bool { return o.Status == OrdersCompleted }
