package roll

import (
	"path/filepath"
	"testing"
)

func TestResolvePathDefaultPattern(t *testing.T) {
	got := ResolvePath("/x", MustParsePattern(DefaultPattern), "3", "jpg")
	if got != "/x/frame_03.jpg" {
		t.Fatalf("ResolvePath = %q, want /x/frame_03.jpg", got)
	}
}

func TestResolvePathToleratesDottedExtension(t *testing.T) {
	got := ResolvePath("/scans", MustParsePattern(DefaultPattern), "12", ".tif")
	want := filepath.Join("/scans", "frame_12.tif")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestPatternFormat(t *testing.T) {
	cases := []struct {
		template string
		frame    Frame
		want     string
	}{
		{"frame_{frame_number:02d}", "3", "frame_03"},
		{"frame_{frame_number:02d}", "123", "frame_123"},
		{"frame_%02d", "3", "frame_03"},
		{"{frame_number}", "7", "7"},
		{"{frame_number:d}-scan", "7", "7-scan"},
		{"IMG_{frame_number:04d}", "36", "IMG_0036"},
		{"roll[{frame_number:3d}]", "5", "roll[  5]"},
		{"{{raw}}_{frame_number:02d}", "1", "{raw}_01"},
		{"100%%_%d", "9", "100%_9"},
		{"frame_{frame_number:02d}", "99999999999999999999", "frame_99999999999999999999"},
	}
	for _, tc := range cases {
		p, err := ParsePattern(tc.template)
		if err != nil {
			t.Errorf("ParsePattern(%q) returned error: %v", tc.template, err)
			continue
		}
		if got := p.Format(tc.frame); got != tc.want {
			t.Errorf("%q.Format(%s) = %q, want %q", tc.template, tc.frame, got, tc.want)
		}
	}
}

func TestParsePatternRejectsBadTemplates(t *testing.T) {
	for _, template := range []string{
		"frame",
		"frame_{frame_number}_{frame_number}",
		"frame_%d_%d",
		"frame_{roll_id}",
		"frame_{frame_number:02s}",
		"frame_{frame_number",
		"frame_}",
		"frame_%s",
	} {
		if _, err := ParsePattern(template); err == nil {
			t.Errorf("ParsePattern(%q) expected error", template)
		}
	}
}
