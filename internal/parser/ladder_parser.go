package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ParseLadderFile opens path and parses it with ParseLadders.
func ParseLadderFile(path string) (*ParsedLadderData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ladder file: %w", err)
	}
	defer file.Close()

	data, err := ParseLadders(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ParseLadders reads a line-oriented ladder dump.
//
// A line whose first token is "tags:" switches the current channel to its
// second token. A line whose first token starts with '1' is a measurement:
// its second token is appended to the current channel. Blank lines and any
// other shape are skipped.
func ParseLadders(r io.Reader) (*ParsedLadderData, error) {
	data := NewParsedLadderData()
	currentChannel := ""

	// bufio.Reader rather than Scanner: lines have no length limit, and an
	// overlong line of an unknown shape must be skipped, not rejected.
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("failed to read ladder data: %w", readErr)
		}
		if line != "" {
			lineNo++
			if err := parseLine(data, &currentChannel, line, lineNo); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	return data, nil
}

// parseLine applies one dump line to data, moving currentChannel on tag lines.
func parseLine(data *ParsedLadderData, currentChannel *string, line string, lineNo int) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil // blank line
	}

	switch {
	case fields[0] == TagMarker:
		// A bare "tags:" keeps the previous channel.
		if len(fields) > 1 {
			*currentChannel = fields[1]
		}
	case fields[0][0] == rungPrefix:
		if len(fields) < 2 {
			return fmt.Errorf("line %d: %w: missing value after %q", lineNo, ErrMalformedValue, fields[0])
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedValue, fields[1])
		}
		// ParseFloat accepts "nan" and "inf"; neither can be averaged or rounded.
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("line %d: %w: non-finite value %q", lineNo, ErrMalformedValue, fields[1])
		}
		data.Append(*currentChannel, val)
	}
	return nil
}
