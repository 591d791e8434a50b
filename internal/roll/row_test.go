package roll

import (
	"reflect"
	"testing"
)

func TestCaptionPrefersParsedNote(t *testing.T) {
	row := Row{VoiceNoteRaw: "raw take"}
	if got := row.Caption(); got != "raw take" {
		t.Fatalf("expected raw caption, got %q", got)
	}

	row.VoiceNoteParsed = "parsed take"
	if got := row.Caption(); got != "parsed take" {
		t.Fatalf("expected parsed caption, got %q", got)
	}
}

func TestLocation(t *testing.T) {
	cases := []struct {
		lat, long string
		want      string
	}{
		{"", "", ""},
		{"37.77", "", ""},
		{"", "-122.41", ""},
		{"37.77", "-122.41", "37.77,-122.41"},
	}
	for _, tc := range cases {
		row := Row{Latitude: tc.lat, Longitude: tc.long}
		if got := row.Location(); got != tc.want {
			t.Errorf("Location(%q, %q) = %q, want %q", tc.lat, tc.long, got, tc.want)
		}
	}
}

func TestKeywordList(t *testing.T) {
	row := Row{Keywords: "a, b ,, c"}
	want := []string{"a", "b", "c"}
	if got := row.KeywordList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("KeywordList = %#v, want %#v", got, want)
	}

	if got := (Row{}).KeywordList(); len(got) != 0 {
		t.Fatalf("expected no keywords for empty column, got %#v", got)
	}
	if got := (Row{Keywords: " , ,"}).KeywordList(); len(got) != 0 {
		t.Fatalf("expected blanks to be dropped, got %#v", got)
	}
}

func TestFrameIndex(t *testing.T) {
	cases := []struct {
		in   string
		want Frame
		ok   bool
	}{
		{"3", "3", true},
		{"036", "36", true},
		{"000", "0", true},
		{"99999999999999999999", "99999999999999999999", true},
		{"", "", false},
		{"3a", "", false},
		{"-1", "", false},
		{" 4", "", false},
		{"4.0", "", false},
		{"٣", "", false},
	}
	for _, tc := range cases {
		got, ok := Row{FrameNumber: tc.in}.FrameIndex()
		if ok != tc.ok || got != tc.want {
			t.Errorf("FrameIndex(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
