package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls with advantage (roll twice, take higher)
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls with disadvantage (roll twice, take lower)
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}

// RollResult holds the outcome of a single dice roll
type RollResult struct {
	// Total is the sum of all kept dice plus the bonus
	Total int

	// Rolls contains every die rolled, including the discarded
	// advantage/disadvantage die
	Rolls []int

	// Bonus is the flat modifier added to the raw total
	Bonus int

	// Count is the number of dice kept
	Count int

	// Sides is the die size
	Sides int

	// RawTotal is the kept dice total before the bonus
	RawTotal int

	// IsCrit is true when a single d20 shows a natural 20
	IsCrit bool

	// IsFumble is true when a single d20 shows a natural 1
	IsFumble bool
}
