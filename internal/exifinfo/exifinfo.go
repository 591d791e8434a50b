// Package exifinfo reads the EXIF block a scanner or camera already wrote into
// an image, so a dry run can show what is there before filmtag touches it.
package exifinfo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// ErrNoExif is returned when the file carries no readable EXIF data.
var ErrNoExif = errors.New("no exif data")

// Info is the subset of EXIF filmtag reports.
type Info struct {
	Taken time.Time
	Make  string
	Model string
}

// Camera joins make and model, dropping a make the model already repeats.
func (i Info) Camera() string {
	switch {
	case i.Make == "":
		return i.Model
	case i.Model == "":
		return i.Make
	case strings.HasPrefix(strings.ToLower(i.Model), strings.ToLower(i.Make)):
		return i.Model
	default:
		return i.Make + " " + i.Model
	}
}

var registerOnce sync.Once

// Read decodes EXIF from the file at path.
func Read(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads EXIF from r. Files without EXIF yield ErrNoExif.
func Decode(r io.Reader) (Info, error) {
	// Optionally register camera makenote data parsing - currently Nikon and
	// Canon are supported.
	registerOnce.Do(func() { exif.RegisterParsers(mknote.All...) })

	x, err := exif.Decode(r)
	if err != nil {
		if exif.IsCriticalError(err) {
			return Info{}, fmt.Errorf("%w: %v", ErrNoExif, err)
		}
		if x == nil {
			return Info{}, fmt.Errorf("%w: %v", ErrNoExif, err)
		}
	}

	var info Info
	if tm, err := x.DateTime(); err == nil {
		info.Taken = tm
	}
	info.Make = stringTag(x, exif.Make)
	info.Model = stringTag(x, exif.Model)
	return info, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(value, "\x00"))
}
