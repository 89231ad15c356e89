package analysis

import (
	"fmt"
	"sort"

	"github.com/user/ladder_analyzer_go/internal/parser"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AverageLadderFile parses path and returns its averaged ladder.
func AverageLadderFile(path string) ([]float64, error) {
	res, err := AnalyzeLadderFile(path)
	if err != nil {
		return nil, err
	}
	return res.Average, nil
}

// AnalyzeLadderFile parses path and runs AverageLadders on the result.
func AnalyzeLadderFile(path string) (*LadderAnalysis, error) {
	data, err := parser.ParseLadderFile(path)
	if err != nil {
		return nil, err
	}
	res, err := AverageLadders(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// AverageLadders sorts every channel ladder ascending and averages them
// element-wise. Every ladder must have the same length.
// The input ladders are not modified.
func AverageLadders(data *parser.ParsedLadderData) (*LadderAnalysis, error) {
	if data == nil || data.NumChannels() == 0 {
		return nil, ErrNoChannels
	}

	// Sort a copy of each ladder; rungs are matched by rank, not by input order.
	channels := make([]ChannelLadder, 0, len(data.Channels))
	for _, name := range data.Channels {
		sorted := append([]float64(nil), data.Ladders[name]...)
		sort.Float64s(sorted)
		channels = append(channels, ChannelLadder{Channel: name, Values: sorted})
	}

	// The first channel fixes the expected length.
	n := len(channels[0].Values)
	for _, ch := range channels[1:] {
		if len(ch.Values) != n {
			return nil, fmt.Errorf("%w: channel %q has %d values, channel %q has %d",
				ErrInconsistentLength, ch.Channel, len(ch.Values), channels[0].Channel, n)
		}
	}

	// Element-wise mean: accumulate, then scale by 1/channels.
	sum := make([]float64, n)
	for _, ch := range channels {
		floats.Add(sum, ch.Values)
	}
	floats.Scale(1/float64(len(channels)), sum)

	return &LadderAnalysis{
		Average:  sum,
		Channels: channels,
		Rungs:    rungStats(channels, sum),
	}, nil
}

// rungStats computes per-rung spread across channels.
func rungStats(channels []ChannelLadder, mean []float64) []RungStats {
	stats := make([]RungStats, len(mean))
	column := make([]float64, len(channels)) // reused for every rung
	for rung := range mean {
		for i, ch := range channels {
			column[i] = ch.Values[rung]
		}
		stats[rung] = RungStats{
			Rung:   rung + 1,
			Mean:   mean[rung],
			StdDev: stat.PopStdDev(column, nil), // population, unweighted
			Min:    floats.Min(column),
			Max:    floats.Max(column),
		}
	}
	return stats
}

// CheckMonotonic reports ErrNotMonotonic if ladder decreases between any two rungs.
func CheckMonotonic(ladder []float64) error {
	for i := 1; i < len(ladder); i++ {
		if ladder[i] < ladder[i-1] {
			return fmt.Errorf("%w: rung %d (%g) < rung %d (%g)", ErrNotMonotonic, i+1, ladder[i], i, ladder[i-1])
		}
	}
	return nil
}
