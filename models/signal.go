package models

// Direction defines a type-safe enum-like structure for crossover directions
type Direction struct {
	value string
}

// Direction constants
var (
	DirectionBull = Direction{"BULL"}
	DirectionBear = Direction{"BEAR"}
)

// ParseDirection maps the wire value of a crossover signal to a Direction
func ParseDirection(value string) (Direction, bool) {
	switch value {
	case DirectionBull.value:
		return DirectionBull, true
	case DirectionBear.value:
		return DirectionBear, true
	default:
		return Direction{}, false
	}
}

// String returns the string representation of the Direction
func (d Direction) String() string {
	return d.value
}

// IsValid checks if a given value is a valid Direction
func (d Direction) IsValid() bool {
	switch d {
	case DirectionBull, DirectionBear:
		return true
	default:
		return false
	}
}

// Order sides as the exchange spells them
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Signal is a single inbound crossover event for one trading pair.
// It is consumed once and never stored beyond the journal.
type Signal struct {
	Pair      TradingPair
	Direction Direction
	Interval  string // chart interval label from the producer, e.g. "15m"
}
