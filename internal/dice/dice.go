// Package dice rolls the polyhedral dice used by the game.
package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"dungeon-master/internal/model"
)

// ErrUnknownDice is returned for dice types outside d4..d20.
var ErrUnknownDice = errors.New("unknown dice type")

// Roller draws a single face of a die.
type Roller interface {
	// Roll returns a value in [1, sides].
	Roll(sides int) int
}

// RandomRoller draws uniformly at random.
type RandomRoller struct{}

// NewRandomRoller creates a new RandomRoller.
func NewRandomRoller() *RandomRoller {
	return &RandomRoller{}
}

// Roll implements Roller.
func (RandomRoller) Roll(sides int) int {
	return rand.IntN(sides) + 1
}

// SequenceRoller replays fixed results in order, cycling when exhausted.
// Results are clamped into [1, sides].
type SequenceRoller struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequenceRoller creates a SequenceRoller. With no values every roll is 1.
func NewSequenceRoller(values ...int) *SequenceRoller {
	return &SequenceRoller{values: values}
}

// Roll implements Roller.
func (s *SequenceRoller) Roll(sides int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 1
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return min(max(v, 1), sides)
}

// Roll rolls one die of diceType, e.g. "d20".
func Roll(r Roller, diceType string) (int, error) {
	sides, ok := model.DiceSides(diceType)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDice, diceType)
	}
	return r.Roll(sides), nil
}
