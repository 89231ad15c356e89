package parser

import "errors"

// NumRungs is the expected number of quality/bitrate rungs in one channel ladder.
const NumRungs = 10

// TagMarker introduces a new channel in the ladder dump; the token after it is the channel id.
const TagMarker = "tags:"

// rungPrefix marks a measurement line: its first token starts with this byte.
const rungPrefix = '1'

// ErrMalformedValue is returned when a measurement line does not carry a parseable float.
var ErrMalformedValue = errors.New("malformed measurement value")

// ParsedLadderData holds every channel ladder found in one dump.
// Key: channel id as written after the "tags:" marker.
// Value: measurements in encounter order (not yet sorted).
type ParsedLadderData struct {
	Ladders  map[string][]float64
	Channels []string // first-encounter order, for stable reports
}

// NewParsedLadderData returns an empty ParsedLadderData with its map allocated.
func NewParsedLadderData() *ParsedLadderData {
	return &ParsedLadderData{
		Ladders:  make(map[string][]float64),
		Channels: make([]string, 0),
	}
}

// Append adds one measurement to channel, registering the channel on first use.
func (d *ParsedLadderData) Append(channel string, value float64) {
	if _, ok := d.Ladders[channel]; !ok {
		d.Channels = append(d.Channels, channel)
	}
	d.Ladders[channel] = append(d.Ladders[channel], value)
}

// NumChannels reports how many distinct channels contributed measurements.
func (d *ParsedLadderData) NumChannels() int {
	return len(d.Ladders)
}
