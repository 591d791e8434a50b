package exiftool

import "github.com/choiway/filmtag/internal/roll"

// SidecarPattern tells exiftool to write <dir>/<basename>.xmp next to the image.
const SidecarPattern = "%d%f.xmp"

// Tag assignments written for every frame.
const (
	TagDescription  = "XMP-dc:Description"
	TagLocation     = "XMP-iptcCore:Location"
	TagSubject      = "XMP-dc:Subject"
	TagShutterSpeed = "XMP-filmmeta:FilmShutterSpeed"
	TagAperture     = "XMP-filmmeta:FilmAperture"
	TagISO          = "XMP-filmmeta:FilmISO"
	TagFilmStock    = "XMP-filmmeta:FilmStock"
	TagCamera       = "XMP-filmmeta:Camera"
	TagLens         = "XMP-filmmeta:Lens"
)

// BuildArgs returns the exiftool arguments for row, without the binary name
// and without the target file, which the caller appends.
func BuildArgs(row roll.Row, inPlace bool, configPath string) []string {
	args := []string{"-config", configPath}
	if inPlace {
		args = append(args, "-overwrite_original")
	} else {
		args = append(args, "-o", SidecarPattern)
	}

	if caption := row.Caption(); caption != "" {
		args = append(args, assign(TagDescription, caption))
	}
	if location := row.Location(); location != "" {
		args = append(args, assign(TagLocation, location))
	}
	for _, keyword := range row.KeywordList() {
		args = append(args, "-"+TagSubject+"+="+keyword)
	}

	technical := []struct {
		tag   string
		value string
	}{
		{TagShutterSpeed, row.Shutter},
		{TagAperture, row.Aperture},
		{TagISO, row.ISO},
		{TagFilmStock, row.FilmStock},
		{TagCamera, row.Camera},
		{TagLens, row.Lens},
	}
	for _, field := range technical {
		if field.value == "" {
			continue
		}
		args = append(args, assign(field.tag, field.value))
	}
	return args
}

func assign(tag, value string) string {
	return "-" + tag + "=" + value
}
