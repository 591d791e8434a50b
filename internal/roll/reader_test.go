package roll

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

func readAll(t *testing.T, r *Reader) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestReaderMapsColumnsByName(t *testing.T) {
	input := strings.Join([]string{
		"frame_number,keywords,roll_id,film_stock,shutter",
		`1,"street, night",R1,Portra 400,1/125`,
		"2,,R1,Portra 400,",
	}, "\n")

	rows := readAll(t, NewReader(strings.NewReader(input)))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.FrameNumber != "1" || first.RollID != "R1" || first.FilmStock != "Portra 400" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Keywords != "street, night" {
		t.Fatalf("expected quoted keywords, got %q", first.Keywords)
	}
	if first.Shutter != "1/125" {
		t.Fatalf("expected shutter 1/125, got %q", first.Shutter)
	}
	if rows[1].Shutter != "" {
		t.Fatalf("expected empty shutter on second row, got %q", rows[1].Shutter)
	}
}

func TestReaderAbsentColumnsAreEmpty(t *testing.T) {
	input := "frame_number,lens\n7,50mm\n8\n"
	rows := readAll(t, NewReader(strings.NewReader(input)))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Camera != "" || rows[0].Lens != "50mm" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].FrameNumber != "8" || rows[1].Lens != "" {
		t.Fatalf("expected short line to leave lens empty, got %+v", rows[1])
	}
}

func TestReaderStripsByteOrderMark(t *testing.T) {
	input := "\ufeffroll_id,frame_number,voice_note_raw\nR9,1,Café au lait\n"
	rows := readAll(t, NewReader(strings.NewReader(input)))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].RollID != "R9" {
		t.Fatalf("expected roll_id despite BOM, got %q", rows[0].RollID)
	}
	if rows[0].VoiceNoteRaw != "Café au lait" {
		t.Fatalf("expected accented text preserved, got %q", rows[0].VoiceNoteRaw)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on repeated read, got %v", err)
	}
}

func TestReaderKeepsStrayQuotes(t *testing.T) {
	input := "frame_number,lens\n1,6\" hood\n2,50mm\n3,\"unterminated\n"
	rows := readAll(t, NewReader(strings.NewReader(input)))
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Lens != `6" hood` {
		t.Fatalf("expected inch mark kept, got %q", rows[0].Lens)
	}
	if rows[1].FrameNumber != "2" || rows[1].Lens != "50mm" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if rows[2].FrameNumber != "3" || !strings.HasPrefix(rows[2].Lens, "unterminated") {
		t.Fatalf("unexpected third row: %+v", rows[2])
	}
}

func TestReaderRecordsStartLine(t *testing.T) {
	input := "frame_number,notes\n1,a\n\n2,\"two\nlines\"\n3,c\n"
	rows := readAll(t, NewReader(strings.NewReader(input)))
	var lines []int
	for _, row := range rows {
		lines = append(lines, row.Line)
	}
	if len(lines) != 3 || lines[0] != 2 || lines[1] != 4 || lines[2] != 6 {
		t.Fatalf("lines = %v, want [2 4 6]", lines)
	}
}

func TestReaderReportsSourceErrors(t *testing.T) {
	r := NewReader(iotest.ErrReader(errors.New("disk gone")))
	_, err := r.Read()
	if err == nil || errors.Is(err, io.EOF) || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected source error, got %v", err)
	}
	if _, again := r.Read(); again != err {
		t.Fatalf("expected sticky error, got %v", again)
	}
}

func TestOpenReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roll.csv")
	if err := os.WriteFile(path, []byte("frame_number,iso\n1,400\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 1 || rows[0].ISO != "400" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing csv")
	}
}
