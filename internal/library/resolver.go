package library

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// StatFunc matches [os.Stat]; tests substitute it to simulate missing files and permission errors.
type StatFunc func(name string) (fs.FileInfo, error)

// ResolverOptions configures a [Resolver].
type ResolverOptions struct {
	CheckExists bool                   // stat resolved paths
	Rewrite     []shared.PrefixRewrite // applied to decoded paths, first match wins
	BaseDir     string                 // directory relative plain paths are joined to
	Literal     bool                   // take plain paths as written, without percent-unescaping
	Stat        StatFunc               // defaults to os.Stat
}

// Resolver turns stored track locations into filesystem paths and checks that they exist.
type Resolver struct {
	opts  ResolverOptions
	stats int
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	return &Resolver{opts: opts}
}

// StatCalls returns how many existence checks hit the filesystem.
func (r *Resolver) StatCalls() int {
	return r.stats
}

// ResolveAll resolves every track.
func (r *Resolver) ResolveAll(tracks []*models.Track) {
	for _, t := range tracks {
		r.Resolve(t)
	}
}

// Resolve fills in t.Path, t.Exists and t.Issue. It runs at most once per track; later calls return immediately.
//
// An undecodable location or a failing stat leaves the status [models.PathUnknown]; only a path the filesystem
// reports as absent becomes [models.PathMissing].
func (r *Resolver) Resolve(t *models.Track) {
	if t.Checked {
		return
	}
	t.Checked = true
	t.Path, t.Exists, t.Issue = "", models.PathUnknown, models.IssueNone

	if !t.HasLocation() {
		t.Issue = models.IssueNoLocation
		return
	}

	decode := DecodeLocation
	if r.opts.Literal {
		decode = DecodeLiteralLocation
	}
	p, err := decode(t.Location, r.opts.BaseDir)
	if err != nil {
		t.Issue = models.IssueUndecodable
		return
	}
	t.Path = r.rewrite(p)

	if !r.opts.CheckExists {
		return
	}

	r.stats++
	info, err := r.opts.Stat(t.Path)
	switch {
	case err == nil && info != nil && info.IsDir():
		t.Exists = models.PathMissing
	case err == nil:
		t.Exists = models.PathExists
	case errors.Is(err, fs.ErrNotExist):
		t.Exists = models.PathMissing
	default:
		t.Issue = models.IssueStatFailed
	}
}

func (r *Resolver) rewrite(p string) string {
	for _, rw := range r.opts.Rewrite {
		from := strings.TrimSuffix(rw.From, "/")
		if from == "" {
			continue
		}
		if p == from || strings.HasPrefix(p, from+"/") || strings.HasPrefix(p, from+string(filepath.Separator)) {
			return strings.TrimSuffix(rw.To, "/") + p[len(from):]
		}
	}
	return p
}

// IsFileURL reports whether a stored location uses the file:// scheme.
func IsFileURL(location string) bool {
	return len(location) >= 7 && strings.EqualFold(location[:7], "file://")
}

// DecodeLocation converts a stored location into a filesystem path.
//
// file:// URLs are unescaped and must name the local host ("" or "localhost"). Other URL schemes are rejected.
// Plain paths are unescaped when they contain '%' and joined to baseDir when relative. A path that would
// contain a line break is rejected.
func DecodeLocation(location, baseDir string) (string, error) {
	return decodeLocation(location, baseDir, true)
}

// DecodeLiteralLocation is [DecodeLocation] for sources that store plain paths verbatim: a '%' in a plain
// path is part of the file name. file:// URLs are still unescaped.
func DecodeLiteralLocation(location, baseDir string) (string, error) {
	return decodeLocation(location, baseDir, false)
}

func decodeLocation(location, baseDir string, unescape bool) (string, error) {
	p, err := decodePath(location, baseDir, unescape)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(p, "\r\n") {
		return "", errors.New("location contains a line break")
	}
	return p, nil
}

func decodePath(location, baseDir string, unescape bool) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", errors.New("empty location")
	}

	if scheme, ok := urlScheme(location); ok {
		if !strings.EqualFold(scheme, "file") {
			return "", fmt.Errorf("unsupported location scheme %q", scheme)
		}
		u, err := url.Parse(location)
		if err != nil {
			return "", err
		}
		if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
			return "", fmt.Errorf("location on remote host %q", u.Host)
		}
		if u.Path == "" {
			return "", errors.New("file URL without a path")
		}
		p := u.Path
		if hasDriveLetter(p[1:]) {
			p = p[1:]
		}
		return filepath.Clean(filepath.FromSlash(p)), nil
	}

	p := location
	if unescape && strings.Contains(p, "%") {
		unescaped, err := url.PathUnescape(p)
		if err != nil {
			return "", err
		}
		p = unescaped
	}
	if !filepath.IsAbs(p) && !hasDriveLetter(p) {
		if baseDir != "" {
			p = filepath.Join(baseDir, p)
		} else if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return filepath.Clean(p), nil
}

// urlScheme extracts "scheme" from "scheme://..." or "file:...".
func urlScheme(s string) (string, bool) {
	if len(s) >= 5 && strings.EqualFold(s[:5], "file:") {
		return s[:4], true
	}
	i := strings.Index(s, "://")
	if i <= 0 {
		return "", false
	}
	for j, c := range s[:i] {
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (j == 0 || !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return "", false
		}
	}
	return s[:i], true
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
