package engine

// featureWindow is the side length of the spatial window in the player
// feature vector.
const featureWindow = 11

// PlayerFeatureLen is the fixed length of PlayerFeatures output.
const PlayerFeatureLen = 4 + len(unitTypeTable) + 5*featureWindow*featureWindow

// PlayerFeatures encodes the player's situation as a fixed-length
// vector for external learners: the turn, city count, observation
// coverage, per-type unit counts, and five fog-aware planes of the
// window centered on focus (land, own city, enemy city, own unit,
// enemy unit).
func (g *Game) PlayerFeatures(secret PlayerSecret, focus Location) ([]float64, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	tracker := g.playerObs.Tracker(player)
	area := float64(g.mapData.Dims().Area())

	features := make([]float64, 0, PlayerFeatureLen)
	features = append(features, float64(g.turn))
	features = append(features, float64(len(g.mapData.PlayerCities(player))))
	features = append(features, float64(tracker.NumObserved()))
	features = append(features, float64(tracker.NumObserved())/area)

	counts := make([]float64, len(unitTypeTable))
	for _, u := range g.mapData.PlayerUnitsDeep(player) {
		counts[u.Type]++
	}
	features = append(features, counts...)

	half := int32(featureWindow / 2)
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			var land, cityMine, cityEnemy, unitMine, unitEnemy float64
			loc, ok := g.wrapping.WrappedAdd(g.mapData.Dims(), focus, Vec2d{dx, dy})
			if ok {
				obs := tracker.Get(loc)
				if obs.Observed {
					if obs.Tile.Terrain == Land {
						land = 1
					}
					if c := obs.Tile.City; c != nil {
						if c.Alignment.BelongsTo(player) {
							cityMine = 1
						} else {
							cityEnemy = 1
						}
					}
					if u := obs.Tile.Unit; u != nil {
						if u.Alignment.BelongsTo(player) {
							unitMine = 1
						} else {
							unitEnemy = 1
						}
					}
				}
			}
			features = append(features, land, cityMine, cityEnemy, unitMine, unitEnemy)
		}
	}
	return features, nil
}
