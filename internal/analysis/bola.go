package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLadder is returned when a ladder cannot drive BOLA parameter derivation.
var ErrInvalidLadder = errors.New("invalid ladder for BOLA")

// maxSSIMDB caps the utility of a lossless (SSIM == 1) encode.
const maxSSIMDB = 60.0

// Encoded is one rung as seen by the BOLA objective.
type Encoded struct {
	Size    float64 // bytes; units do not change the decision
	Utility float64
}

// BolaParameters are the BOLA-BASIC control parameters.
type BolaParameters struct {
	V  float64
	Gp float64
}

// BolaConfig describes the client buffer the parameters are fitted to.
type BolaConfig struct {
	MinBufS        float64 // below this the smallest format wins
	MaxBufS        float64 // above this nothing is sent
	ChunkDurationS float64
}

// MinBufChunks converts MinBufS to (possibly fractional) chunks.
func (c BolaConfig) MinBufChunks() float64 { return c.MinBufS / c.ChunkDurationS }

// MaxBufChunks converts MaxBufS to (possibly fractional) chunks.
func (c BolaConfig) MaxBufChunks() float64 { return c.MaxBufS / c.ChunkDurationS }

// SSIMToDB converts a raw SSIM index to decibels, capped at 60 dB.
func SSIMToDB(raw float64) float64 {
	if raw >= 1 {
		return maxSSIMDB
	}
	return math.Min(-10*math.Log10(1-raw), maxSSIMDB)
}

// Objective is the BOLA score of sending e with bufChunks already buffered.
func (p BolaParameters) Objective(e Encoded, bufChunks float64) float64 {
	return (p.V*(e.Utility+p.Gp) - bufChunks) / e.Size
}

// ChooseMaxObjective returns the index and format with the highest objective
// at bufChunks. Ties go to the earlier format; an empty list yields -1.
func (p BolaParameters) ChooseMaxObjective(formats []Encoded, bufChunks float64) (int, Encoded) {
	best := -1
	bestObj := math.Inf(-1)
	for i, e := range formats {
		if obj := p.Objective(e, bufChunks); best < 0 || obj > bestObj {
			best, bestObj = i, obj
		}
	}
	if best < 0 {
		return -1, Encoded{}
	}
	return best, formats[best]
}

// CalculateBolaParameters fits V and gp so that the two smallest formats
// tie at minBufChunks and the best format's objective reaches zero at
// maxBufChunks. formats must be sorted ascending by size.
func CalculateBolaParameters(formats []Encoded, minBufChunks, maxBufChunks float64) (BolaParameters, error) {
	if len(formats) < 2 {
		return BolaParameters{}, fmt.Errorf("%w: need at least 2 formats, got %d", ErrInvalidLadder, len(formats))
	}
	if minBufChunks == maxBufChunks {
		return BolaParameters{}, fmt.Errorf("%w: min and max buffer are equal (%g chunks)", ErrInvalidLadder, minBufChunks)
	}
	smallest, second, largest := formats[0], formats[1], formats[len(formats)-1]
	sizeDelta := second.Size - smallest.Size
	if sizeDelta <= 0 {
		return BolaParameters{}, fmt.Errorf("%w: second rung (%g) is not larger than first (%g)", ErrInvalidLadder, second.Size, smallest.Size)
	}

	gp := (maxBufChunks*(second.Size*smallest.Utility-smallest.Size*second.Utility) -
		largest.Utility*minBufChunks*sizeDelta) /
		((minBufChunks - maxBufChunks) * sizeDelta)
	v := maxBufChunks / (largest.Utility + gp)
	return BolaParameters{V: v, Gp: gp}, nil
}

// BolaFromLadders derives BOLA parameters from averaged size and SSIM ladders.
func BolaFromLadders(sizes, ssims []float64, cfg BolaConfig) (BolaParameters, error) {
	if len(sizes) != len(ssims) {
		return BolaParameters{}, fmt.Errorf("%w: %d sizes vs %d ssim values", ErrInconsistentLength, len(sizes), len(ssims))
	}
	if cfg.ChunkDurationS <= 0 {
		return BolaParameters{}, fmt.Errorf("%w: chunk duration must be positive", ErrInvalidLadder)
	}
	if err := CheckMonotonic(sizes); err != nil {
		return BolaParameters{}, fmt.Errorf("sizes: %w", err)
	}
	if err := CheckMonotonic(ssims); err != nil {
		return BolaParameters{}, fmt.Errorf("ssims: %w", err)
	}

	return CalculateBolaParameters(BolaFormats(sizes, ssims), cfg.MinBufChunks(), cfg.MaxBufChunks())
}

// BolaFormats pairs each size with the dB utility of its SSIM. The ladders
// must have equal length.
func BolaFormats(sizes, ssims []float64) []Encoded {
	formats := make([]Encoded, len(sizes))
	for i := range sizes {
		formats[i] = Encoded{Size: sizes[i], Utility: SSIMToDB(ssims[i])}
	}
	return formats
}
