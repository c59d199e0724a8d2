package library

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// ParseResult holds the tracks read from a library export and the entries that were dropped.
type ParseResult struct {
	Tracks             []*models.Track
	SkippedNoID        int // entries without any usable identifier
	SkippedDuplicateID int // entries repeating an identifier already seen
}

// Skipped returns the number of entries that did not become tracks.
func (r *ParseResult) Skipped() int {
	return r.SkippedNoID + r.SkippedDuplicateID
}

// ParseFile opens and parses the library export at path.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", shared.ErrLibraryNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrLibraryNotFound, path)
	}

	res, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Parse reads a plist library document from r in a single streaming pass.
//
// Errors wrap [shared.ErrMalformedLibrary] when the document is not well-formed XML or is not a plist whose top
// level value is a dictionary. A document without a Tracks dictionary yields an empty result.
func Parse(r io.Reader) (*ParseResult, error) {
	p := &parser{dec: xml.NewDecoder(r), seen: make(map[string]bool)}
	if err := p.document(); err != nil {
		return nil, err
	}
	return &p.res, nil
}

type parser struct {
	dec  *xml.Decoder
	res  ParseResult
	seen map[string]bool
}

func (p *parser) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s (offset %d)", shared.ErrMalformedLibrary, fmt.Sprintf(format, args...), p.dec.InputOffset())
}

func (p *parser) wrap(err error) error {
	if errors.Is(err, shared.ErrMalformedLibrary) {
		return err
	}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return fmt.Errorf("%w: line %d: %s", shared.ErrMalformedLibrary, syn.Line, syn.Msg)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return p.malformed("unexpected end of document")
	}
	return fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
}

// next returns the next start or end element, skipping character data, comments, processing instructions and
// directives such as the plist DOCTYPE.
func (p *parser) next() (xml.Token, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		}
	}
}

func (p *parser) document() error {
	tok, err := p.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return p.malformed("empty document")
		}
		return p.wrap(err)
	}
	root, ok := tok.(xml.StartElement)
	if !ok || root.Name.Local != "plist" {
		return p.malformed("root element is not <plist>")
	}

	tok, err = p.next()
	if err != nil {
		return p.wrap(err)
	}
	top, ok := tok.(xml.StartElement)
	if !ok || top.Name.Local != "dict" {
		return p.malformed("top-level value is not a <dict>")
	}

	if err := p.topDict(); err != nil {
		return err
	}

	// the rest must still be well-formed
	for {
		if _, err := p.dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return p.wrap(err)
		}
	}
}

// entries walks key/value pairs of the dictionary whose start element was just consumed, calling fn with each key
// and the value's start element. fn must consume the value, including its end element.
func (p *parser) entries(fn func(key string, value xml.StartElement) error) error {
	for {
		tok, err := p.next()
		if err != nil {
			return p.wrap(err)
		}
		if _, ok := tok.(xml.EndElement); ok {
			return nil
		}

		start := tok.(xml.StartElement)
		if start.Name.Local != "key" {
			return p.malformed("expected <key>, found <%s>", start.Name.Local)
		}
		var key string
		if err := p.dec.DecodeElement(&key, &start); err != nil {
			return p.wrap(err)
		}

		tok, err = p.next()
		if err != nil {
			return p.wrap(err)
		}
		value, ok := tok.(xml.StartElement)
		if !ok {
			return p.malformed("key %q has no value", key)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
}

func (p *parser) skip() error {
	if err := p.dec.Skip(); err != nil {
		return p.wrap(err)
	}
	return nil
}

func (p *parser) topDict() error {
	return p.entries(func(key string, value xml.StartElement) error {
		if key != "Tracks" {
			return p.skip()
		}
		if value.Name.Local != "dict" {
			return p.malformed("Tracks is a <%s>, not a <dict>", value.Name.Local)
		}
		return p.tracks()
	})
}

func (p *parser) tracks() error {
	return p.entries(func(key string, value xml.StartElement) error {
		if value.Name.Local != "dict" {
			p.res.SkippedNoID++
			return p.skip()
		}

		fields := make(map[string]plistValue)
		err := p.entries(func(k string, v xml.StartElement) error {
			val, err := p.value(v)
			if err != nil {
				return err
			}
			fields[k] = val
			return nil
		})
		if err != nil {
			return err
		}

		track, ok := newTrack(strings.TrimSpace(key), fields)
		if !ok {
			p.res.SkippedNoID++
			return nil
		}
		if p.seen[track.ID] {
			p.res.SkippedDuplicateID++
			return nil
		}
		p.seen[track.ID] = true
		track.Index = len(p.res.Tracks)
		p.res.Tracks = append(p.res.Tracks, track)
		return nil
	})
}

// plistValue is a scalar plist value; containers keep only their kind.
type plistValue struct {
	kind string // integer, real, string, date, data, true, false, dict, array
	text string
}

func (p *parser) value(start xml.StartElement) (plistValue, error) {
	kind := start.Name.Local
	switch kind {
	case "dict", "array":
		return plistValue{kind: kind}, p.skip()
	default:
		var text string
		if err := p.dec.DecodeElement(&text, &start); err != nil {
			return plistValue{}, p.wrap(err)
		}
		return plistValue{kind: kind, text: strings.TrimSpace(text)}, nil
	}
}

func (v plistValue) asString() (string, bool) {
	if v.kind != "string" {
		return "", false
	}
	return v.text, true
}

// asNumber accepts integer and real values, and strings holding a number.
func (v plistValue) asNumber() (float64, bool) {
	switch v.kind {
	case "integer", "real", "string":
		f, err := strconv.ParseFloat(v.text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func newTrack(dictKey string, fields map[string]plistValue) (*models.Track, bool) {
	t := &models.Track{}

	if v, ok := fields["Track ID"]; ok && v.kind == "integer" && v.text != "" {
		t.ID = v.text
	}
	if s, ok := fields["Persistent ID"].asString(); ok {
		t.PersistentID = s
	}
	switch {
	case t.ID != "":
	case t.PersistentID != "":
		t.ID = t.PersistentID
	case dictKey != "":
		t.ID = dictKey
	default:
		return nil, false
	}

	t.Name, _ = fields["Name"].asString()
	t.Artist, _ = fields["Artist"].asString()
	t.Album, _ = fields["Album"].asString()
	t.Genre, _ = fields["Genre"].asString()
	t.Location, _ = fields["Location"].asString()

	if f, ok := fields["BPM"].asNumber(); ok && f >= 0 {
		t.BPM = &f
	}
	if ms, ok := fields["Total Time"].asNumber(); ok && ms >= 0 {
		d := time.Duration(ms) * time.Millisecond
		t.Duration = &d
	}

	return t, true
}
