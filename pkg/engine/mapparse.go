package engine

import (
	"fmt"
	"strings"
)

// ParseMapData builds map state from a character grid, one line per
// row:
//
//	' '  water
//	'.'  land
//	0-9  city owned by that player, on land
//	'*'  neutral city, on land
//	unit key (see UnitType.Key) a player-0 unit, uppercase for player 1;
//	     the terrain underneath follows the unit's transport mode
//
// Ragged lines are padded with water. Mostly used by tests and
// fixtures.
func ParseMapData(s string) (*MapData, error) {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return nil, fmt.Errorf("map notation: empty input")
	}
	height := uint16(len(lines))
	var width uint16
	for _, line := range lines {
		if uint16(len(line)) > width {
			width = uint16(len(line))
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("map notation: empty rows")
	}

	m := NewMapData(Dims{Width: width, Height: height}, func(Location) Terrain {
		return Water
	})
	unitNamer := NewIntNamer("Unit")
	cityNamer := NewIntNamer("City")

	for y, line := range lines {
		for x := 0; x < len(line); x++ {
			loc := Location{X: uint16(x), Y: uint16(y)}
			ch := line[x]
			switch {
			case ch == ' ':
				// water
			case ch == '.':
				m.SetTerrain(loc, Land)
			case ch >= '0' && ch <= '9':
				m.SetTerrain(loc, Land)
				owner := BelligerentAlignment(PlayerNum(ch - '0'))
				if _, err := m.NewCity(loc, owner, cityNamer.Name()); err != nil {
					return nil, err
				}
			case ch == '*':
				m.SetTerrain(loc, Land)
				if _, err := m.NewCity(loc, Neutral, cityNamer.Name()); err != nil {
					return nil, err
				}
			default:
				key := ch
				player := PlayerNum(0)
				if ch >= 'A' && ch <= 'Z' {
					key = ch - 'A' + 'a'
					player = 1
				}
				t, ok := UnitTypeFromKey(key)
				if !ok {
					return nil, fmt.Errorf("map notation: unknown character %q at %s", string(ch), loc)
				}
				switch t.TransportMode() {
				case SeaMode:
					// water already
				default:
					m.SetTerrain(loc, Land)
				}
				if _, err := m.NewUnit(loc, t, BelligerentAlignment(player), unitNamer.Name()); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}
