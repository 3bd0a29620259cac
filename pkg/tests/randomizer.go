package tests

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

type Randomizer struct {
	Intn func(n int) int
	Bool func() bool
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // for tests

	return Randomizer{
		Intn: random.Intn,
		Bool: func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
	}
}

// Quantity случайное целое количество в диапазоне [1, upTo].
func (r Randomizer) Quantity(upTo int) decimal.Decimal {
	return decimal.NewFromInt(int64(r.Intn(upTo) + 1))
}
