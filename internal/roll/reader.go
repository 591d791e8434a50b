package roll

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader streams rows from a roll CSV export. It is forward only.
type Reader struct {
	csv    *csv.Reader
	closer io.Closer
	index  map[string]int
	err    error
}

// Open opens the CSV at path. Callers must Close the reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roll csv: %w", err)
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// NewReader wraps src. A UTF-8 byte order mark is dropped and invalid byte
// sequences decode to U+FFFD. A stray quote inside an unquoted field, such as
// an inch mark, is kept as text.
func NewReader(src io.Reader) *Reader {
	decoded := transform.NewReader(src, unicode.UTF8BOM.NewDecoder())
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Read returns the next row, or io.EOF once the file is exhausted.
func (r *Reader) Read() (Row, error) {
	if r.err != nil {
		return Row{}, r.err
	}
	if r.index == nil {
		if err := r.readHeader(); err != nil {
			r.err = err
			return Row{}, err
		}
	}

	record, err := r.csv.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			err = fmt.Errorf("read roll csv: %w", err)
		}
		r.err = err
		return Row{}, err
	}

	line, _ := r.csv.FieldPos(0)

	get := func(name string) string {
		i, ok := r.index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	return Row{
		RollID:          get("roll_id"),
		FilmStock:       get("film_stock"),
		ISO:             get("iso"),
		Camera:          get("camera"),
		Lens:            get("lens"),
		Notes:           get("notes"),
		StartTime:       get("start_time"),
		EndTime:         get("end_time"),
		FrameNumber:     get("frame_number"),
		Shutter:         get("shutter"),
		Aperture:        get("aperture"),
		FocalLength:     get("focal_length"),
		ExposureComp:    get("exposure_comp"),
		Timestamp:       get("timestamp"),
		Latitude:        get("latitude"),
		Longitude:       get("longitude"),
		WeatherSummary:  get("weather_summary"),
		TemperatureC:    get("temperature_c"),
		VoiceNoteRaw:    get("voice_note_raw"),
		VoiceNoteParsed: get("voice_note_parsed"),
		Keywords:        get("keywords"),
		Line:            line,
	}, nil
}

// Close releases the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("read roll csv header: %w", err)
	}
	r.index = make(map[string]int, len(header))
	for i, name := range header {
		// duplicate names resolve to the rightmost column
		r.index[name] = i
	}
	return nil
}
