package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the countdown length of every round.
type Difficulty int

const (
	// DifficultyEasy gives the player 20 seconds per round.
	DifficultyEasy Difficulty = iota

	// DifficultyPro gives the player 10 seconds per round.
	DifficultyPro

	// DifficultyLegend gives the player 3 seconds per round.
	DifficultyLegend
)

// Difficulties lists every difficulty in menu order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyPro, DifficultyLegend}

// Duration returns the countdown length for the difficulty.
func (d Difficulty) Duration() time.Duration {
	switch d {
	case DifficultyPro:
		return 10 * time.Second
	case DifficultyLegend:
		return 3 * time.Second
	default:
		return 20 * time.Second
	}
}

// String returns the lower-case name used in config files and flags.
func (d Difficulty) String() string {
	switch d {
	case DifficultyPro:
		return "pro"
	case DifficultyLegend:
		return "legend"
	default:
		return "easy"
	}
}

// Label returns the menu label, e.g. "Pro (10s)".
func (d Difficulty) Label() string {
	name := d.String()
	return fmt.Sprintf("%s%s (%ds)", strings.ToUpper(name[:1]), name[1:], int(d.Duration().Seconds()))
}

// ParseDifficulty parses a difficulty name, ignoring case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "pro":
		return DifficultyPro, nil
	case "legend":
		return DifficultyLegend, nil
	}
	return DifficultyEasy, fmt.Errorf("unknown difficulty %q (want easy, pro or legend)", s)
}
