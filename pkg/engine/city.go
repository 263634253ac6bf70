package engine

import "fmt"

// CityID identifies a city for its whole lifetime. Like unit ids, city
// ids are never reused.
type CityID uint64

// CityMaxHP is the fixed strength of every city.
const CityMaxHP uint16 = 1

// City is a production site. Cities never move; conquest changes their
// alignment in place.
type City struct {
	ID        CityID
	Alignment Alignment
	Loc       Location
	Name      string
	HP        uint16

	// Production is the unit type under construction, or nil.
	Production         *UnitType
	ProductionProgress uint16

	// IgnoreClearedProduction suppresses the turn-done requirement to
	// assign production after the player explicitly cleared it.
	IgnoreClearedProduction bool
}

// NewCity returns a city at full strength with no production target.
func NewCity(id CityID, loc Location, alignment Alignment, name string) City {
	return City{ID: id, Alignment: alignment, Loc: loc, Name: name, HP: CityMaxHP}
}

// Clone copies the city, including the production target.
func (c City) Clone() City {
	out := c
	if c.Production != nil {
		p := *c.Production
		out.Production = &p
	}
	return out
}

func (c *City) String() string {
	return fmt.Sprintf("city %s at %s of %s", c.Name, c.Loc, c.Alignment)
}

// MaxHP returns the city's full hit points.
func (c *City) MaxHP() uint16 { return CityMaxHP }

// SetProduction assigns a production target and resets progress when
// the target changes.
func (c *City) SetProduction(t UnitType) {
	if c.Production == nil || *c.Production != t {
		c.ProductionProgress = 0
	}
	p := t
	c.Production = &p
	c.IgnoreClearedProduction = false
}

// ClearProduction stops production. When ignore is set, the city stops
// counting against the end-of-turn requirement to assign production.
func (c *City) ClearProduction(ignore bool) {
	c.Production = nil
	c.ProductionProgress = 0
	if ignore {
		c.IgnoreClearedProduction = true
	}
}
