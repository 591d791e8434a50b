package roll

import (
	"strings"
)

// Row is one exposed frame as exported from the roll log. Every field is kept
// as the text found in the spreadsheet.
type Row struct {
	RollID          string
	FilmStock       string
	ISO             string
	Camera          string
	Lens            string
	Notes           string
	StartTime       string
	EndTime         string
	FrameNumber     string
	Shutter         string
	Aperture        string
	FocalLength     string
	ExposureComp    string
	Timestamp       string
	Latitude        string
	Longitude       string
	WeatherSummary  string
	TemperatureC    string
	VoiceNoteRaw    string
	VoiceNoteParsed string
	Keywords        string

	// Line is where the record starts in the export, counting the header as
	// line 1. Zero when the row did not come from a Reader.
	Line int
}

// Frame is a frame number in canonical decimal form: ASCII digits with
// leading zeros removed. It stays text so numbers of any size resolve.
type Frame string

func (f Frame) String() string {
	return string(f)
}

// Caption prefers the parsed voice note and falls back to the raw transcript.
func (r Row) Caption() string {
	if r.VoiceNoteParsed != "" {
		return r.VoiceNoteParsed
	}
	return r.VoiceNoteRaw
}

// Location returns "lat,long" when both coordinates are present.
func (r Row) Location() string {
	if r.Latitude == "" || r.Longitude == "" {
		return ""
	}
	return r.Latitude + "," + r.Longitude
}

// KeywordList splits the comma separated keywords column, dropping blanks.
func (r Row) KeywordList() []string {
	var out []string
	for _, item := range strings.Split(r.Keywords, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FrameIndex parses frame_number. ok is false unless the column is made of
// ASCII digits only.
func (r Row) FrameIndex() (Frame, bool) {
	if !isDigits(r.FrameNumber) {
		return "", false
	}
	digits := strings.TrimLeft(r.FrameNumber, "0")
	if digits == "" {
		digits = "0"
	}
	return Frame(digits), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
