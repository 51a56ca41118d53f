package vtt

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSerializeLayout(t *testing.T) {
	cues := []Cue{
		{ID: "0", Start: 0, End: 5, Text: "Ambient sound"},
		{ID: "5", Start: 5, End: 7.25, Text: "Music playing"},
	}
	want := "WEBVTT\n\n" +
		"0\n00:00:00.000 --> 00:00:05.000\nAmbient sound\n\n" +
		"5\n00:00:05.000 --> 00:00:07.250\nMusic playing\n\n"
	if got := Serialize(cues); got != want {
		t.Fatalf("Serialize mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestFormatTimestampTruncates(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{1.9999, "00:00:01.999"},
		{1.001, "00:00:01.001"},
		{61.5, "00:01:01.500"},
		{3661.001, "01:01:01.001"},
		{36000, "10:00:00.000"},
		{-3, "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:00:01.500", 1.5, true},
		{"01:02:03.004", 3723.004, true},
		{"02:03.250", 123.25, true},
		{"00:00:01,250", 1.25, true},
		{"00:00:01.0005", 1.0005, true},
		{"nope", 0, false},
		{"aa:00:01.000", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.ok != (err == nil) {
			t.Fatalf("ParseTimestamp(%q) err=%v, want ok=%v", tt.in, err, tt.ok)
		}
		if tt.ok && !near(got, tt.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHandlesRealWorldInput(t *testing.T) {
	input := "WEBVTT\r\nKind: captions\r\nLanguage: en\r\n\r\n" +
		"1\r\n00:00:01.000 --> 00:00:03.500 align:start position:0%\r\nHello there\r\nfriend\r\n\r\n" +
		"NOTE this block is ignored\r\n\r\n" +
		"2\r\n00:00:03.500 --> 00:00:04.000\r\n\r\n" +
		"3\r\n00:00:04.000 --> 00:00:06.000\r\n42 is the answer\r\n"

	got := Parse(input)
	want := []Cue{
		{ID: "0", Start: 1, End: 3.5, Text: "Hello there friend"},
		{ID: "1", Start: 4, End: 6, Text: "42 is the answer"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
}

func TestParseIgnoresNumericLinesAsText(t *testing.T) {
	input := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n12345\nreal text\n"
	got := Parse(input)
	if len(got) != 1 || got[0].Text != "real text" {
		t.Fatalf("expected numeric line ignored, got %+v", got)
	}
}

func TestParsePreservesInputOrder(t *testing.T) {
	input := "WEBVTT\n\n00:00:10.000 --> 00:00:12.000\nlater\n\n00:00:01.000 --> 00:00:02.000\nearlier\n"
	got := Parse(input)
	if len(got) != 2 || got[0].Text != "later" || got[1].Text != "earlier" {
		t.Fatalf("expected input order preserved, got %+v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	cues := []Cue{
		{ID: "0", Start: 0, End: 1.001, Text: "first"},
		{ID: "a", Start: 1.001, End: 2.5, Text: "second line joined"},
		{ID: "b", Start: 59.999, End: 61.25, Text: "minute boundary"},
		{ID: "c", Start: 3661.001, End: 3665, Text: "past an hour"},
	}
	got := Parse(Serialize(cues))
	if len(got) != len(cues) {
		t.Fatalf("expected %d cues, got %d", len(cues), len(got))
	}
	for i := range cues {
		if !near(got[i].Start, cues[i].Start) || !near(got[i].End, cues[i].End) || got[i].Text != cues[i].Text {
			t.Fatalf("cue %d mismatch: got %+v want %+v", i, got[i], cues[i])
		}
		if got[i].ID != []string{"0", "1", "2", "3"}[i] {
			t.Fatalf("cue %d id = %q, want sequential", i, got[i].ID)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.vtt")
	cues := []Cue{{ID: "0", Start: 0, End: 5, Text: "Sound effects"}}
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].Text != "Sound effects" || got[0].End != 5 {
		t.Fatalf("unexpected cues: %+v", got)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.vtt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
