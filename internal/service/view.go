package service

import (
	"context"

	"github.com/freeeve/quiet-conquest/internal/model"
	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// View renders a game as the requesting user's seat sees it, fog of
// war applied.
func (s *PlayService) View(ctx context.Context, gameID, userID string) (*model.BoardView, error) {
	lg, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	secret, err := lg.secretFor(userID)
	if err != nil {
		return nil, err
	}
	// presence only; failure does not block the view
	_ = s.cache.Touch(ctx, gameID, userID)
	return buildBoardView(lg.game, lg.rec.ID, secret)
}

func buildBoardView(g *engine.Game, gameID string, secret engine.PlayerSecret) (*model.BoardView, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return nil, err
	}
	dims := g.Dims()
	view := &model.BoardView{
		GameID:        gameID,
		Width:         dims.Width,
		Height:        dims.Height,
		Turn:          g.Turn(),
		CurrentPlayer: int(g.CurrentPlayer()),
		Player:        int(player),
	}
	if victor, won := g.Victor(); won {
		v := int(victor)
		view.Victor = &v
	}

	for _, loc := range dims.Locations() {
		obs, err := g.PlayerObsAt(secret, loc)
		if err != nil {
			return nil, err
		}
		tv := model.TileView{Loc: loc, Observed: obs.Observed}
		if obs.Observed {
			tv.Current = obs.Current
			tv.Turn = obs.Turn
			tv.Terrain = obs.Tile.Terrain.String()
			if obs.Tile.Unit != nil {
				uv := unitView(*obs.Tile.Unit)
				tv.Unit = &uv
				view.Units = append(view.Units, uv)
			}
			if obs.Tile.City != nil {
				cv := cityView(*obs.Tile.City, player)
				tv.City = &cv
				view.Cities = append(view.Cities, cv)
			}
		}
		view.Tiles = append(view.Tiles, tv)
	}

	if int(g.CurrentPlayer()) == int(player) {
		if ids, err := g.PlayerUnitOrdersRequests(secret); err == nil {
			view.AwaitOrders = ids
		}
		if ids, err := g.PlayerProductionSetRequests(secret); err == nil {
			view.AwaitProd = ids
		}
	}
	return view, nil
}

func unitView(u engine.Unit) model.UnitView {
	uv := model.UnitView{
		ID:             u.ID,
		Type:           u.Type.String(),
		Loc:            u.Loc,
		HP:             u.HP,
		MaxHP:          u.Type.MaxHP(),
		MovesRemaining: u.MovesRemaining,
		Name:           u.Name,
	}
	if owner, ok := u.Alignment.Player(); ok {
		p := int(owner)
		uv.Player = &p
	}
	if u.Fuel.Limited {
		fuel := u.Fuel.Remaining
		uv.FuelRemaining = &fuel
	}
	if u.Orders != nil {
		uv.Orders = u.Orders.String()
	}
	if u.Carrying != nil {
		for _, carried := range u.Carrying.Carried {
			uv.Carrying = append(uv.Carrying, unitView(carried))
		}
	}
	return uv
}

func cityView(c engine.City, viewer engine.PlayerNum) model.CityView {
	cv := model.CityView{
		ID:   c.ID,
		Loc:  c.Loc,
		Name: c.Name,
	}
	if owner, ok := c.Alignment.Player(); ok {
		p := int(owner)
		cv.Player = &p
	}
	// production is private to the owner
	if c.Alignment.BelongsTo(viewer) && c.Production != nil {
		cv.Production = c.Production.String()
		cv.Progress = c.ProductionProgress
	}
	return cv
}

// MoveViewOf flattens an engine move for the wire.
func MoveViewOf(mv *engine.Move) *model.MoveView {
	if mv == nil {
		return nil
	}
	out := &model.MoveView{
		UnitID:    mv.Unit.ID,
		From:      mv.StartingLoc,
		Moved:     mv.MovedSuccessfully(),
		Destroyed: mv.UnitDestroyed(),
		Distance:  uint16(mv.DistanceMoved()),
	}
	if loc, ok := mv.EndingLoc(); ok {
		out.To = loc
	} else {
		out.To = mv.StartingLoc
	}
	if city := mv.ConqueredCity(); city != nil {
		// moves are always player-initiated; a neutral mover renders
		// the city as an outside observer would
		viewer, _ := mv.Unit.Alignment.Player()
		cv := cityView(*city, viewer)
		out.Conquered = &cv
	}
	return out
}
