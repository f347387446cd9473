package game

// weaknesses maps each type to the single type that is super-effective against it.
// The table is neither symmetric nor transitive.
var weaknesses = map[ElementType]ElementType{
	Normal:   Fighting,
	Fire:     Water,
	Water:    Electric,
	Grass:    Fire,
	Electric: Ground,
	Ice:      Steel,
	Fighting: Psychic,
	Poison:   Ground,
	Ground:   Grass,
	Flying:   Rock,
	Psychic:  Dark,
	Bug:      Flying,
	Rock:     Water,
	Ghost:    Dark,
	Dragon:   Fairy,
	Dark:     Bug,
	Steel:    Fighting,
	Fairy:    Poison,
}

// WeaknessOf returns the type that deals double damage to t.
// ok is false only for values outside the 18 known types.
func WeaknessOf(t ElementType) (weak ElementType, ok bool) {
	weak, ok = weaknesses[t]
	return weak, ok
}

// Multiplier returns 2 when attacker is the defender's weakness, 1 otherwise.
func Multiplier(attacker, defender ElementType) int {
	if weak, ok := weaknesses[defender]; ok && weak == attacker {
		return 2
	}
	return 1
}

// Damage computes the damage attacker deals to defender. It is never below 1.
func Damage(attacker, defender Card) int {
	dmg := (attacker.Attack - defender.Defense) * Multiplier(attacker.Type, defender.Type)
	return max(1, dmg)
}
