package dice

import (
	"strconv"
	"strings"

	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// AbilityModifier returns the modifier for an ability score.
// Modifiers round down, so a score of 9 is -1, not 0.
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// ParseNotation splits a dice string like "2d6" or "1d8+2" into its parts.
func ParseNotation(notation string) (count, sides, bonus int, err error) {
	dicePart := notation
	if idx := strings.Index(notation, "+"); idx >= 0 {
		bonus, err = strconv.Atoi(strings.TrimSpace(notation[idx+1:]))
		if err != nil {
			return 0, 0, 0, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
		}
		dicePart = notation[:idx]
	}

	parts := strings.Split(strings.TrimSpace(dicePart), "d")
	if len(parts) != 2 {
		return 0, 0, 0, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	count, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	sides, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	if count < 1 || sides < 1 {
		return 0, 0, 0, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	return count, sides, bonus, nil
}
