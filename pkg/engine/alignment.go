package engine

import (
	"encoding/json"
	"fmt"
)

// PlayerNum identifies a player by seat order.
type PlayerNum uint8

// Alignment is the ownership of a unit or city: neutral, or belonging
// to a specific player.
type Alignment struct {
	belligerent bool
	player      PlayerNum
}

// Neutral is the alignment of unowned cities.
var Neutral = Alignment{}

// BelligerentAlignment returns the alignment of player p.
func BelligerentAlignment(p PlayerNum) Alignment {
	return Alignment{belligerent: true, player: p}
}

// IsNeutral reports whether the alignment belongs to no player.
func (a Alignment) IsNeutral() bool {
	return !a.belligerent
}

// IsBelligerent reports whether the alignment belongs to a player.
func (a Alignment) IsBelligerent() bool {
	return a.belligerent
}

// Player returns the owning player. The second return is false for
// neutral alignments.
func (a Alignment) Player() (PlayerNum, bool) {
	return a.player, a.belligerent
}

// IsFriendlyTo reports whether both alignments belong to the same
// player. Neutral is friendly to nothing, itself included.
func (a Alignment) IsFriendlyTo(other Alignment) bool {
	return a.belligerent && other.belligerent && a.player == other.player
}

// IsEnemyOf reports whether the alignments differ.
func (a Alignment) IsEnemyOf(other Alignment) bool {
	return a != other
}

// BelongsTo reports whether the alignment is player p's.
func (a Alignment) BelongsTo(p PlayerNum) bool {
	return a.belligerent && a.player == p
}

type alignmentJSON struct {
	Belligerent bool      `json:"belligerent"`
	Player      PlayerNum `json:"player,omitempty"`
}

// MarshalJSON implements json.Marshaler. The fields are unexported so
// the encoder needs help to round-trip ownership.
func (a Alignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(alignmentJSON{Belligerent: a.belligerent, Player: a.player})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Alignment) UnmarshalJSON(b []byte) error {
	var wire alignmentJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	a.belligerent = wire.Belligerent
	a.player = wire.Player
	return nil
}

func (a Alignment) String() string {
	if !a.belligerent {
		return "neutral"
	}
	return fmt.Sprintf("player %d", a.player)
}
