package engine

import "fmt"

// MoveErrorKind classifies movement failures.
type MoveErrorKind uint8

const (
	MoveErrZeroLengthMove MoveErrorKind = iota
	MoveErrSourceUnitDoesNotExist
	MoveErrDestinationOutOfBounds
	MoveErrNoRoute
	MoveErrRemainingMovesExceeded
	MoveErrInsufficientFuel
)

func (k MoveErrorKind) String() string {
	switch k {
	case MoveErrZeroLengthMove:
		return "zero-length move"
	case MoveErrSourceUnitDoesNotExist:
		return "source unit does not exist"
	case MoveErrDestinationOutOfBounds:
		return "destination out of bounds"
	case MoveErrNoRoute:
		return "no route"
	case MoveErrRemainingMovesExceeded:
		return "remaining moves exceeded"
	case MoveErrInsufficientFuel:
		return "insufficient fuel"
	default:
		return "unknown move error"
	}
}

// MoveError describes why a unit movement failed. No state changes when
// a MoveError is returned.
type MoveError struct {
	Kind      MoveErrorKind
	ID        UnitID
	Src       Location
	Dest      Location
	Requested uint16
	Remaining uint16
}

func (e MoveError) Error() string {
	switch e.Kind {
	case MoveErrNoRoute:
		return fmt.Sprintf("%s: unit %d from %s to %s", e.Kind, e.ID, e.Src, e.Dest)
	case MoveErrRemainingMovesExceeded:
		return fmt.Sprintf("%s: unit %d needs %d but has %d", e.Kind, e.ID, e.Requested, e.Remaining)
	case MoveErrDestinationOutOfBounds:
		return fmt.Sprintf("%s: %s", e.Kind, e.Dest)
	default:
		return fmt.Sprintf("%s: unit %d", e.Kind, e.ID)
	}
}

// Is matches by kind so callers can test errors.Is(err, MoveError{Kind: ...}).
func (e MoveError) Is(target error) bool {
	t, ok := target.(MoveError)
	return ok && t.Kind == e.Kind
}

// GameErrorKind classifies failures of player-level operations.
type GameErrorKind uint8

const (
	ErrNoSuchPlayer GameErrorKind = iota
	ErrNoPlayerIdentifiedBySecret
	ErrNotPlayersTurn
	ErrWrongPhase
	ErrNoPlayerSlotsAvailable
	ErrNoSuchUnit
	ErrNoUnitAtLocation
	ErrNoSuchCity
	ErrNoCityAtLocation
	ErrUnitNotControlledByPlayer
	ErrCityNotControlledByPlayer
	ErrUnitHasNoCarryingSpace
	ErrWrongTransportMode
	ErrInsufficientCarryingSpace
	ErrOnlyAlliesCarry
	ErrCannotOccupyGarrisonedCity
	ErrInvalidProduction
	ErrTurnEndRequirementsNotMet
	ErrMove
)

func (k GameErrorKind) String() string {
	switch k {
	case ErrNoSuchPlayer:
		return "no such player"
	case ErrNoPlayerIdentifiedBySecret:
		return "no player identified by secret"
	case ErrNotPlayersTurn:
		return "not player's turn"
	case ErrWrongPhase:
		return "wrong turn phase"
	case ErrNoPlayerSlotsAvailable:
		return "no player slots available"
	case ErrNoSuchUnit:
		return "no such unit"
	case ErrNoUnitAtLocation:
		return "no unit at location"
	case ErrNoSuchCity:
		return "no such city"
	case ErrNoCityAtLocation:
		return "no city at location"
	case ErrUnitNotControlledByPlayer:
		return "unit not controlled by player"
	case ErrCityNotControlledByPlayer:
		return "city not controlled by player"
	case ErrUnitHasNoCarryingSpace:
		return "unit has no carrying space"
	case ErrWrongTransportMode:
		return "wrong transport mode"
	case ErrInsufficientCarryingSpace:
		return "insufficient carrying space"
	case ErrOnlyAlliesCarry:
		return "only allied units can be carried"
	case ErrCannotOccupyGarrisonedCity:
		return "cannot occupy garrisoned city"
	case ErrInvalidProduction:
		return "invalid production"
	case ErrTurnEndRequirementsNotMet:
		return "turn end requirements not met"
	case ErrMove:
		return "move failed"
	default:
		return "unknown game error"
	}
}

// GameError describes why a player-level operation was rejected. Only
// the fields relevant to the kind are set.
type GameError struct {
	Kind   GameErrorKind
	Player PlayerNum
	UnitID UnitID
	CityID CityID
	Loc    Location
	Err    error
}

func (e GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	switch e.Kind {
	case ErrNoSuchPlayer, ErrNotPlayersTurn, ErrWrongPhase, ErrTurnEndRequirementsNotMet:
		return fmt.Sprintf("%s: player %d", e.Kind, e.Player)
	case ErrNoSuchUnit, ErrUnitNotControlledByPlayer, ErrUnitHasNoCarryingSpace,
		ErrWrongTransportMode, ErrInsufficientCarryingSpace, ErrOnlyAlliesCarry:
		return fmt.Sprintf("%s: unit %d", e.Kind, e.UnitID)
	case ErrNoSuchCity, ErrCityNotControlledByPlayer:
		return fmt.Sprintf("%s: city %d", e.Kind, e.CityID)
	case ErrNoUnitAtLocation, ErrNoCityAtLocation, ErrCannotOccupyGarrisonedCity:
		return fmt.Sprintf("%s: %s", e.Kind, e.Loc)
	default:
		return e.Kind.String()
	}
}

// Is matches by kind.
func (e GameError) Is(target error) bool {
	t, ok := target.(GameError)
	return ok && t.Kind == e.Kind
}

func (e GameError) Unwrap() error { return e.Err }

func moveGameError(err error) error {
	return GameError{Kind: ErrMove, Err: err}
}
