package domain

import "time"

// Game limits.
const (
	MinPlayers     = 2
	MaxPlayers     = 4
	MinAge         = 5
	MaxAge         = 100
	RoomCodeLength = 6
	OptionCount    = 4

	// MaxPlayerIDLength fits a UUID with room to spare.
	MaxPlayerIDLength = 64
)

// RevealDelay is how long a fastest finger outcome is shown before it is applied.
const RevealDelay = 2 * time.Second

// PrizeTiers is the money ladder, lowest first.
var PrizeTiers = []int{
	100, 200, 300, 500, 1000,
	2000, 4000, 8000, 16000, 32000,
	64000, 125000, 250000, 500000, 1000000,
}

// SafetyNetIndices are the guaranteed tiers ($1,000 and $32,000).
var SafetyNetIndices = []int{4, 9}

// TopTier is the index of the million dollar question.
func TopTier() int {
	return len(PrizeTiers) - 1
}

// Prize returns the winnings for tier, clamped to the ladder.
func Prize(tier int) int {
	if tier < 0 {
		return 0
	}
	if tier > TopTier() {
		tier = TopTier()
	}
	return PrizeTiers[tier]
}
