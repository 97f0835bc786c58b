package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

var notationPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Dice is parsed dice notation such as 2d6+3
type Dice struct {
	Count    int
	Sides    int
	Modifier int
}

// ParseNotation parses NdS, NdS+M and dS. Whitespace and case are ignored.
func ParseNotation(notation string) (Dice, error) {
	clean := strings.ToLower(strings.ReplaceAll(notation, " ", ""))
	matches := notationPattern.FindStringSubmatch(clean)
	if matches == nil {
		return Dice{}, errors.InvalidArgumentf("invalid dice notation: %q", notation)
	}

	count := 1
	if matches[1] != "" {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return Dice{}, errors.InvalidArgumentf("invalid dice count in notation: %q", notation)
		}
		count = n
	}

	sides, err := strconv.Atoi(matches[2])
	if err != nil {
		return Dice{}, errors.InvalidArgumentf("invalid die size in notation: %q", notation)
	}

	modifier := 0
	if matches[3] != "" {
		modifier, err = strconv.Atoi(matches[3])
		if err != nil {
			return Dice{}, errors.InvalidArgumentf("invalid modifier in notation: %q", notation)
		}
	}

	if count <= 0 || sides <= 0 {
		return Dice{}, errors.InvalidArgumentf("dice count and size must be positive: %q", notation)
	}

	return Dice{Count: count, Sides: sides, Modifier: modifier}, nil
}
