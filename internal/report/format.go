package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Section headers printed above each averaged ladder.
const (
	SizeHeader = "Avg size (bytes):"
	SSIMHeader = "Avg ssim_index:"
)

// FormatSizeLadder renders sizes rounded to the nearest integer, e.g. "[44319, 93355]".
func FormatSizeLadder(sizes []float64) string {
	parts := make([]string, len(sizes))
	for i, v := range sizes {
		parts[i] = strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatSSIMLadder renders SSIM values unrounded, using the shortest exact representation.
func FormatSSIMLadder(ssims []float64) string {
	parts := make([]string, len(ssims))
	for i, v := range ssims {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteSizeSection writes the labelled size ladder.
func WriteSizeSection(w io.Writer, sizes []float64) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", SizeHeader, FormatSizeLadder(sizes))
	return err
}

// WriteSSIMSection writes the labelled SSIM ladder.
func WriteSSIMSection(w io.Writer, ssims []float64) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", SSIMHeader, FormatSSIMLadder(ssims))
	return err
}
