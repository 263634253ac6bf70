package engine

import "math/rand"

// CombatParticipant names a side of a fight.
type CombatParticipant uint8

const (
	Attacker CombatParticipant = iota
	Defender
)

func (p CombatParticipant) String() string {
	if p == Attacker {
		return "attacker"
	}
	return "defender"
}

// CombatOutcome records a resolved fight: the starting strengths, who
// took each point of damage in order, and who was left standing.
type CombatOutcome struct {
	Victor             CombatParticipant
	AttackerInitialHP  uint16
	DefenderInitialHP  uint16
	ReceivedDamage     []CombatParticipant
	DefenderCity       *City
	DefenderUnit       *Unit
}

// resolveCombat flips a fair coin repeatedly; the loser of each flip
// loses one hit point, until one side reaches zero. The rng is the
// caller's, so identical seeds replay identical battles.
func resolveCombat(attackerHP, defenderHP uint16, rng *rand.Rand) CombatOutcome {
	outcome := CombatOutcome{
		AttackerInitialHP: attackerHP,
		DefenderInitialHP: defenderHP,
	}
	for attackerHP > 0 && defenderHP > 0 {
		if rng.Intn(2) == 0 {
			defenderHP--
			outcome.ReceivedDamage = append(outcome.ReceivedDamage, Defender)
		} else {
			attackerHP--
			outcome.ReceivedDamage = append(outcome.ReceivedDamage, Attacker)
		}
	}
	if attackerHP > 0 {
		outcome.Victor = Attacker
	} else {
		outcome.Victor = Defender
	}
	return outcome
}

// DamageTo returns how many hit points the side lost.
func (o *CombatOutcome) DamageTo(side CombatParticipant) uint16 {
	var n uint16
	for _, hit := range o.ReceivedDamage {
		if hit == side {
			n++
		}
	}
	return n
}

// Victorious reports whether the attacker won.
func (o *CombatOutcome) Victorious() bool { return o.Victor == Attacker }

// DestroyedAttacker reports whether the attacker was destroyed.
func (o *CombatOutcome) DestroyedAttacker() bool { return o.Victor == Defender }
