package analysis

import "errors"

var (
	// ErrNoChannels is returned when a dump contained no channel ladders to average.
	ErrNoChannels = errors.New("no channel ladders to average")
	// ErrInconsistentLength is returned when channel ladders differ in length.
	ErrInconsistentLength = errors.New("inconsistent ladder length")
	// ErrNotMonotonic is returned when a ladder decreases between rungs.
	ErrNotMonotonic = errors.New("ladder is not nondecreasing")
)

// ChannelLadder is one channel's ladder after sorting ascending.
type ChannelLadder struct {
	Channel string
	Values  []float64
}

// RungStats holds the cross-channel statistics of a single rung.
type RungStats struct {
	Rung   int // 1-based
	Mean   float64
	StdDev float64 // population std dev across channels
	Min    float64
	Max    float64
}

// LadderAnalysis holds all results from averaging one ladder dump.
type LadderAnalysis struct {
	Average  []float64       // element-wise mean of the sorted channel ladders
	Channels []ChannelLadder // sorted ladders, in first-encounter order
	Rungs    []RungStats
}

// NumChannels reports how many channels were averaged.
func (a *LadderAnalysis) NumChannels() int {
	return len(a.Channels)
}

// NumRungs reports the ladder length shared by every channel.
func (a *LadderAnalysis) NumRungs() int {
	return len(a.Average)
}
