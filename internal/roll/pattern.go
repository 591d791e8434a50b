package roll

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPattern names frames frame_01, frame_02, ...
const DefaultPattern = "frame_{frame_number:02d}"

// Pattern is a parsed filename template holding a single integer placeholder.
type Pattern struct {
	raw    string
	prefix string
	suffix string
	width  int
	zero   bool
}

// ParsePattern accepts either the brace form ({frame_number}, {frame_number:03d})
// or a printf verb (%d, %03d). Exactly one placeholder is required.
func ParsePattern(template string) (Pattern, error) {
	p := Pattern{raw: template}
	var (
		buf   strings.Builder
		found bool
	)
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			buf.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			buf.WriteByte('}')
			i++
		case c == '%' && i+1 < len(template) && template[i+1] == '%':
			buf.WriteByte('%')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return Pattern{}, fmt.Errorf("filename pattern %q: unclosed '{'", template)
			}
			if found {
				return Pattern{}, fmt.Errorf("filename pattern %q: more than one placeholder", template)
			}
			if err := p.parseBrace(template[i+1 : i+end]); err != nil {
				return Pattern{}, fmt.Errorf("filename pattern %q: %w", template, err)
			}
			p.prefix = buf.String()
			buf.Reset()
			found = true
			i += end
		case c == '}':
			return Pattern{}, fmt.Errorf("filename pattern %q: unmatched '}'", template)
		case c == '%':
			end := strings.IndexByte(template[i:], 'd')
			if end < 0 {
				return Pattern{}, fmt.Errorf("filename pattern %q: unsupported verb", template)
			}
			if found {
				return Pattern{}, fmt.Errorf("filename pattern %q: more than one placeholder", template)
			}
			if err := p.parseSpec(template[i+1 : i+end]); err != nil {
				return Pattern{}, fmt.Errorf("filename pattern %q: %w", template, err)
			}
			p.prefix = buf.String()
			buf.Reset()
			found = true
			i += end
		default:
			buf.WriteByte(c)
		}
	}
	if !found {
		return Pattern{}, fmt.Errorf("filename pattern %q: missing frame number placeholder", template)
	}
	p.suffix = buf.String()
	return p, nil
}

func (p *Pattern) parseBrace(field string) error {
	name, spec, hasSpec := strings.Cut(field, ":")
	if name != "frame_number" && name != "" {
		return fmt.Errorf("unknown field %q", name)
	}
	if !hasSpec {
		return nil
	}
	if !strings.HasSuffix(spec, "d") {
		return errors.New("only integer formatting is supported")
	}
	return p.parseSpec(strings.TrimSuffix(spec, "d"))
}

// parseSpec reads the flag/width part of "%03d" or "{:03d}", without the verb.
func (p *Pattern) parseSpec(spec string) error {
	if spec == "" {
		return nil
	}
	if spec[0] == '0' {
		p.zero = true
		spec = spec[1:]
		if spec == "" {
			return nil
		}
	}
	width, err := strconv.Atoi(spec)
	if err != nil || width < 0 {
		return fmt.Errorf("invalid width %q", spec)
	}
	p.width = width
	return nil
}

// MustParsePattern is ParsePattern for known-good templates.
func MustParsePattern(template string) Pattern {
	p, err := ParsePattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Format renders the filename, without extension, for frame.
func (p Pattern) Format(frame Frame) string {
	num := string(frame)
	if pad := p.width - len(num); pad > 0 {
		fill := " "
		if p.zero {
			fill = "0"
		}
		num = strings.Repeat(fill, pad) + num
	}
	return p.prefix + num + p.suffix
}

func (p Pattern) String() string {
	return p.raw
}

// ResolvePath returns dir/<pattern(frame)>.<ext>.
func ResolvePath(dir string, pattern Pattern, frame Frame, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(dir, pattern.Format(frame)+"."+ext)
}
