package parser

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const influxDump = `name: video_sent
tags: channel=abc format=1280x720-22

time size
---- ----
tags: abc
1590600000000000000 44000
1590600000000000001 93000

tags: nbc
1590600000000000000 45000.5
1590600000000000001 92000
`

func TestParseLadders(t *testing.T) {
	data, err := ParseLadders(strings.NewReader(influxDump))
	if err != nil {
		t.Fatal(err)
	}
	// "tags: channel=abc ..." selects channel "channel=abc", but no value follows it.
	want := map[string][]float64{
		"abc": {44000, 93000},
		"nbc": {45000.5, 92000},
	}
	if !reflect.DeepEqual(data.Ladders, want) {
		t.Errorf("Ladders = %v, want %v", data.Ladders, want)
	}
	if !reflect.DeepEqual(data.Channels, []string{"abc", "nbc"}) {
		t.Errorf("Channels = %v", data.Channels)
	}
}

func TestParseLadders_ValuesBeforeTag(t *testing.T) {
	data, err := ParseLadders(strings.NewReader("1_0 10\n1_1 20\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := data.Ladders[""]; !reflect.DeepEqual(got, []float64{10, 20}) {
		t.Errorf(`Ladders[""] = %v, want [10 20]`, got)
	}
}

func TestParseLadders_IgnoresOtherLines(t *testing.T) {
	in := "tags: 0\n2_0 999\nfoo bar\n   \n1_0 5\ntags:\n1_1 6\n"
	data, err := ParseLadders(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got := data.Ladders["0"]; !reflect.DeepEqual(got, []float64{5, 6}) {
		t.Errorf(`Ladders["0"] = %v, want [5 6]`, got)
	}
	if data.NumChannels() != 1 {
		t.Errorf("NumChannels = %d, want 1", data.NumChannels())
	}
}

func TestParseLadders_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"non-numeric", "tags: 0\n1_2 abc\n"},
		{"missing value", "tags: 0\n1_2\n"},
		{"nan", "tags: 0\n1_2 NaN\n"},
		{"positive inf", "tags: 0\n1_2 +Inf\n"},
		{"negative inf", "tags: 0\n1_2 -inf\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParseLadders(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformedValue) {
				t.Fatalf("err = %v, want ErrMalformedValue", err)
			}
			if data != nil {
				t.Errorf("data = %v, want nil", data)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("error %q does not name the line", err)
			}
		})
	}
}

func TestParseLadders_LongLines(t *testing.T) {
	long := strings.Repeat("x", 70000)
	in := "tags: 0\n1_0 5 " + long + "\n" + long + "\n1_1 6\n"

	data, err := ParseLadders(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got := data.Ladders["0"]; !reflect.DeepEqual(got, []float64{5, 6}) {
		t.Errorf(`Ladders["0"] = %v, want [5 6]`, got)
	}
}

func TestParseLadders_Empty(t *testing.T) {
	data, err := ParseLadders(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if data.NumChannels() != 0 {
		t.Errorf("NumChannels = %d, want 0", data.NumChannels())
	}
}

func TestParseLadderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avg_sizes")
	if err := os.WriteFile(path, []byte("tags: 0\n1_0 3\n1_1 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := ParseLadderFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := data.Ladders["0"]; !reflect.DeepEqual(got, []float64{3, 1}) {
		t.Errorf("ladder = %v, want encounter order [3 1]", got)
	}
}

func TestParseLadderFile_NotFound(t *testing.T) {
	_, err := ParseLadderFile(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}
