package engine

import (
	"math/rand"
	"testing"
)

func TestMoveConsumesOneMovePoint(t *testing.T) {
	g, secrets := mustGame(t, "i...", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID

	mv, err := g.MoveUnitByID(secrets[0], id, Location{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(mv.Components) != 1 || mv.DistanceMoved() != 1 {
		t.Fatalf("move = %+v", mv)
	}
	if loc, ok := mv.EndingLoc(); !ok || loc != (Location{1, 0}) {
		t.Errorf("ending loc = %v ok=%v", loc, ok)
	}
	u := g.mapData.UnitByID(id)
	if u.MovesRemaining != 0 {
		t.Errorf("moves remaining = %d", u.MovesRemaining)
	}

	// out of move points now
	if _, err := g.MoveUnitByID(secrets[0], id, Location{2, 0}); !isMoveErr(err, MoveErrRemainingMovesExceeded) {
		t.Errorf("exhausted move: %v", err)
	}
}

func TestMoveErrors(t *testing.T) {
	g, secrets := mustGame(t, "i...", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID

	if _, err := g.MoveUnitByID(secrets[0], id, Location{0, 0}); !isMoveErr(err, MoveErrZeroLengthMove) {
		t.Errorf("zero-length: %v", err)
	}
	if _, err := g.MoveUnitByID(secrets[0], id, Location{9, 9}); !isMoveErr(err, MoveErrDestinationOutOfBounds) {
		t.Errorf("out of bounds: %v", err)
	}
	if _, err := g.MoveUnitByID(secrets[0], 999, Location{1, 0}); !isMoveErr(err, MoveErrSourceUnitDoesNotExist) {
		t.Errorf("missing unit: %v", err)
	}
}

func TestMoveNoRouteAcrossWater(t *testing.T) {
	g, secrets := mustGame(t, "i .", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	if _, err := g.MoveUnitByID(secrets[0], id, Location{2, 0}); !isMoveErr(err, MoveErrNoRoute) {
		t.Errorf("water crossing on foot: %v", err)
	}
}

func TestMoveCombatVictory(t *testing.T) {
	g, secrets := mustGame(t, "aI.", 2, WrapNeither, attackerWinsSource{})
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	enemyID := g.mapData.PlayerUnits(1)[0].ID

	mv, err := g.MoveUnitByID(secrets[0], id, Location{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	comp := mv.Components[0]
	if comp.UnitCombat == nil || !comp.UnitCombat.Victorious() {
		t.Fatalf("combat = %+v", comp.UnitCombat)
	}
	if comp.UnitCombat.DefenderUnit == nil || comp.UnitCombat.DefenderUnit.ID != enemyID {
		t.Error("defender snapshot missing")
	}
	if g.mapData.UnitByID(enemyID) != nil {
		t.Error("defeated defender still on the map")
	}
	if g.mapData.UnitByLoc(Location{1, 0}).ID != id {
		t.Error("victor should advance onto the tile")
	}
	if !mv.MovedSuccessfully() {
		t.Error("winning move should count as successful")
	}
}

func TestMoveCombatDefeat(t *testing.T) {
	g, secrets := mustGame(t, "aI.", 2, WrapNeither, defenderWinsSource{})
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	enemyID := g.mapData.PlayerUnits(1)[0].ID

	mv, err := g.MoveUnitByID(secrets[0], id, Location{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !mv.UnitDestroyed() {
		t.Fatal("attacker should have died")
	}
	if mv.Unit.HP != 0 {
		t.Errorf("snapshot hp = %d", mv.Unit.HP)
	}
	if g.mapData.UnitByID(id) != nil {
		t.Error("destroyed attacker still on the map")
	}
	if g.mapData.UnitByID(enemyID) == nil {
		t.Error("defender should survive")
	}
	if _, ok := mv.EndingLoc(); ok {
		t.Error("a dead unit has no ending location")
	}
}

func TestMoveConquersCity(t *testing.T) {
	g, secrets := mustGame(t, "a1.", 2, WrapNeither, attackerWinsSource{})
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID

	mv, err := g.MoveUnitByID(secrets[0], id, Location{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	conquered := mv.ConqueredCity()
	if conquered == nil {
		t.Fatal("no conquered city recorded")
	}
	if !conquered.Alignment.BelongsTo(1) {
		t.Error("snapshot should show the previous owner")
	}
	city := g.mapData.CityByLoc(Location{1, 0})
	if !city.Alignment.BelongsTo(0) {
		t.Error("city not transferred")
	}
	if g.mapData.UnitByLoc(Location{1, 0}).ID != id {
		t.Error("conqueror should garrison the city")
	}
}

func TestConquestEndsMovement(t *testing.T) {
	g, secrets := mustGame(t, "a1..", 2, WrapNeither, attackerWinsSource{})
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID

	// dest lies beyond the city; the walk must stop at the conquest
	mv, err := g.MoveUnitByID(secrets[0], id, Location{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if mv.ConqueredCity() == nil {
		t.Fatal("city not taken")
	}
	if loc, ok := mv.EndingLoc(); !ok || loc != (Location{1, 0}) {
		t.Errorf("ending loc = %v ok=%v", loc, ok)
	}
	u := g.mapData.UnitByLoc(Location{1, 0})
	if u == nil || u.ID != id {
		t.Fatal("conqueror should stay and garrison the city")
	}
	if u.MovesRemaining != 0 {
		t.Errorf("moves remaining after conquest = %d", u.MovesRemaining)
	}
}

func TestAirUnitsCannotTakeCities(t *testing.T) {
	g, secrets := mustGame(t, "f1.", 2, WrapNeither, attackerWinsSource{})
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	if _, err := g.MoveUnitByID(secrets[0], id, Location{1, 0}); !isMoveErr(err, MoveErrNoRoute) {
		t.Errorf("fighter assaulting a city: %v", err)
	}
}

func TestMoveBoardsTransport(t *testing.T) {
	g, secrets := mustGame(t, "it.", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	var infID, trID UnitID
	for _, u := range g.mapData.PlayerUnits(0) {
		if u.Type == Infantry {
			infID = u.ID
		} else {
			trID = u.ID
		}
	}

	mv, err := g.MoveUnitByID(secrets[0], infID, Location{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	carrier, ok := mv.EndingCarrier()
	if !ok || carrier != trID {
		t.Fatalf("carrier = %d ok=%v", carrier, ok)
	}
	if g.mapData.UnitByLoc(Location{1, 0}).ID != trID {
		t.Error("transport should keep the tile")
	}
	inf := g.mapData.UnitByID(infID)
	if inf == nil || inf.Loc != (Location{1, 0}) {
		t.Fatalf("passenger: %+v", inf)
	}
}

func TestMoveInsufficientFuel(t *testing.T) {
	g, secrets := mustGame(t, "f....", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	g.mapData.UnitByID(id).Fuel.Remaining = 1

	if _, err := g.MoveUnitByID(secrets[0], id, Location{3, 0}); !isMoveErr(err, MoveErrInsufficientFuel) {
		t.Errorf("dry tank: %v", err)
	}
	// one tile is still within range
	if _, err := g.MoveUnitByID(secrets[0], id, Location{1, 0}); err != nil {
		t.Errorf("single step: %v", err)
	}
}

func TestMoveFuelExhaustionDestroysUnit(t *testing.T) {
	g, secrets := mustGame(t, "f.....", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	g.mapData.UnitByID(id).Fuel.Remaining = 2

	mv, err := g.MoveUnitByID(secrets[0], id, Location{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !mv.FuelRanOut {
		t.Error("empty tank not recorded on the move")
	}
	if mv.MovedSuccessfully() {
		t.Error("running out of fuel is not a successful move")
	}
	if mv.DistanceMoved() != 2 {
		t.Errorf("distance moved = %d", mv.DistanceMoved())
	}
	if _, ok := mv.EndingLoc(); ok {
		t.Error("a crashed unit has no ending location")
	}
	if g.mapData.UnitByID(id) != nil {
		t.Error("fighter should be lost when its tank runs dry")
	}
}

func TestMoveObservesAlongTheWay(t *testing.T) {
	g, secrets := mustGame(t, "a.....", 1, WrapNeither, rand.NewSource(1))
	if _, err := g.BeginTurn(secrets[0], false); err != nil {
		t.Fatal(err)
	}
	id := g.mapData.PlayerUnits(0)[0].ID
	before, _ := g.PlayerNumObserved(secrets[0])

	mv, err := g.MoveUnitByID(secrets[0], id, Location{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(mv.Observations()) == 0 {
		t.Error("moving should produce observations")
	}
	after, _ := g.PlayerNumObserved(secrets[0])
	if after <= before {
		t.Errorf("observed %d -> %d", before, after)
	}
}
