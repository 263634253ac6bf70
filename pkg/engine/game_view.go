package engine

// PlayerObsAt returns what the player knows about loc. With fog of war
// off, the truth is returned as a current observation.
func (g *Game) PlayerObsAt(secret PlayerSecret, loc Location) (Obs, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return Obs{}, err
	}
	if !g.fogOfWar {
		tile := g.mapData.Get(loc)
		if tile == nil {
			return UnobservedObs, nil
		}
		return Obs{Observed: true, Tile: tile.Clone(), Turn: g.turn, Current: true}, nil
	}
	return g.playerObs.Tracker(player).Get(loc), nil
}

// PlayerTile returns the tile at loc as the player knows it, nil when
// unobserved.
func (g *Game) PlayerTile(secret PlayerSecret, loc Location) (*Tile, error) {
	obs, err := g.PlayerObsAt(secret, loc)
	if err != nil {
		return nil, err
	}
	if !obs.Observed {
		return nil, nil
	}
	tile := obs.Tile
	return &tile, nil
}

// PlayerObservations returns the player's observation tracker. The
// tracker is live; callers must not mutate through it.
func (g *Game) PlayerObservations(secret PlayerSecret) (*ObsTracker, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	return g.playerObs.Tracker(player), nil
}

// PlayerNumObserved returns how many locations the player has seen.
func (g *Game) PlayerNumObserved(secret PlayerSecret) (uint32, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return 0, err
	}
	return g.playerObs.Tracker(player).NumObserved(), nil
}

// PlayerUnits returns snapshots of the player's top-level units in id
// order.
func (g *Game) PlayerUnits(secret PlayerSecret) ([]Unit, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	live := g.mapData.PlayerUnits(player)
	units := make([]Unit, len(live))
	for i, u := range live {
		units[i] = u.Clone()
	}
	return units, nil
}

// PlayerUnitByID returns a snapshot of the player's unit.
func (g *Game) PlayerUnitByID(secret PlayerSecret, id UnitID) (Unit, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return Unit{}, err
	}
	u := g.mapData.PlayerUnitByID(player, id)
	if u == nil {
		return Unit{}, GameError{Kind: ErrNoSuchUnit, UnitID: id}
	}
	return u.Clone(), nil
}

// PlayerCities returns snapshots of the player's cities in id order.
func (g *Game) PlayerCities(secret PlayerSecret) ([]City, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	live := g.mapData.PlayerCities(player)
	cities := make([]City, len(live))
	for i, c := range live {
		cities[i] = c.Clone()
	}
	return cities, nil
}

// PlayerCityByLoc returns a snapshot of the player's city at loc.
func (g *Game) PlayerCityByLoc(secret PlayerSecret, loc Location) (City, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return City{}, err
	}
	c := g.mapData.PlayerCityByLoc(player, loc)
	if c == nil {
		return City{}, GameError{Kind: ErrNoCityAtLocation, Loc: loc}
	}
	return c.Clone(), nil
}

// PlayerUnitOrdersRequests returns the player's units awaiting orders.
func (g *Game) PlayerUnitOrdersRequests(secret PlayerSecret) ([]UnitID, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	return g.UnitOrdersRequests(player), nil
}

// PlayerProductionSetRequests returns the player's cities awaiting a
// production target.
func (g *Game) PlayerProductionSetRequests(secret PlayerSecret) ([]CityID, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	return g.ProductionSetRequests(player), nil
}
