package library

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
	tu "github.com/desertthunder/libsort/internal/testing"
)

func TestDecodeLocation(t *testing.T) {
	tc := []struct {
		name     string
		location string
		baseDir  string
		want     string
		wantErr  bool
	}{
		{name: "localhost file URL", location: "file://localhost/Users/me/Music/My%20Song.mp3", want: "/Users/me/Music/My Song.mp3"},
		{name: "empty host file URL", location: "file:///Users/me/a.m4a", want: "/Users/me/a.m4a"},
		{name: "upper-case scheme", location: "FILE:///x/y.mp3", want: "/x/y.mp3"},
		{name: "escaped reserved characters", location: "file:///m/Track%20%2301%3F.mp3", want: "/m/Track #01?.mp3"},
		{name: "unicode escapes", location: "file:///m/Beyonc%C3%A9.mp3", want: "/m/Beyoncé.mp3"},
		{name: "windows drive", location: "file://localhost/C:/Music/a.mp3", want: filepath.FromSlash("C:/Music/a.mp3")},
		{name: "plain absolute path", location: "/Volumes/Music/a.aif", want: "/Volumes/Music/a.aif"},
		{name: "plain escaped path", location: "/Volumes/My%20Music/a.aif", want: "/Volumes/My Music/a.aif"},
		{name: "relative path joins base", location: "Music/a.mp3", baseDir: "/lib", want: "/lib/Music/a.mp3"},
		{name: "http is undecodable", location: "http://example.com/a.mp3", wantErr: true},
		{name: "remote host", location: "file://nas/share/a.mp3", wantErr: true},
		{name: "bad escape in URL", location: "file:///a%zz.mp3", wantErr: true},
		{name: "bad escape in path", location: "/a%zz.mp3", wantErr: true},
		{name: "opaque file URL", location: "file:a.mp3", wantErr: true},
		{name: "escaped line break in URL", location: "file:///music/a%0Ab.mp3", wantErr: true},
		{name: "escaped line break in path", location: "/music/a%0Db.mp3", wantErr: true},
		{name: "blank", location: "   ", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLocation(tt.location, tt.baseDir)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got path %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeLiteralLocation(t *testing.T) {
	tc := []struct {
		name     string
		location string
		baseDir  string
		want     string
		wantErr  bool
	}{
		{name: "percent sign in file name", location: "/Volumes/Music/100% Hits.aif", want: "/Volumes/Music/100% Hits.aif"},
		{name: "escape-like sequence kept", location: "/Volumes/Music/a%20b.aif", want: "/Volumes/Music/a%20b.aif"},
		{name: "relative path joins base", location: "Music/50%.mp3", baseDir: "/lib", want: "/lib/Music/50%.mp3"},
		{name: "file URL still unescaped", location: "file:///m/My%20Song.mp3", want: "/m/My Song.mp3"},
		{name: "line break in URL", location: "file:///m/a%0Ab.mp3", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLiteralLocation(tt.location, tt.baseDir)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got path %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeLiteralLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFileURL(t *testing.T) {
	if !IsFileURL("file://localhost/a") || !IsFileURL("FILE:///a") {
		t.Error("expected file URLs to be recognized")
	}
	if IsFileURL("/a/b") || IsFileURL("http://x") || IsFileURL("file:") {
		t.Error("expected non file URLs to be rejected")
	}
}

func TestResolver(t *testing.T) {
	stub := &tu.StatStub{
		Files:  map[string]bool{"/m/here.mp3": false, "/m/folder": true, "/new/root/x.mp3": false},
		Errors: map[string]error{"/m/locked.mp3": &fs.PathError{Op: "stat", Path: "/m/locked.mp3", Err: fs.ErrPermission}},
	}
	r := NewResolver(ResolverOptions{
		CheckExists: true,
		Stat:        stub.Stat,
		Rewrite:     []shared.PrefixRewrite{{From: "/old/root/", To: "/new/root"}},
	})

	tc := []struct {
		name      string
		location  string
		wantPath  string
		wantState models.PathStatus
		wantIssue models.PathIssue
	}{
		{name: "existing", location: "file:///m/here.mp3", wantPath: "/m/here.mp3", wantState: models.PathExists},
		{name: "missing", location: "file:///m/gone.mp3", wantPath: "/m/gone.mp3", wantState: models.PathMissing},
		{name: "directory counts as missing", location: "/m/folder", wantPath: "/m/folder", wantState: models.PathMissing},
		{name: "permission error stays unknown", location: "/m/locked.mp3", wantPath: "/m/locked.mp3", wantState: models.PathUnknown, wantIssue: models.IssueStatFailed},
		{name: "undecodable stays unknown", location: "https://cdn/a.mp3", wantState: models.PathUnknown, wantIssue: models.IssueUndecodable},
		{name: "no location", location: "", wantState: models.PathUnknown, wantIssue: models.IssueNoLocation},
		{name: "rewritten prefix", location: "file:///old/root/x.mp3", wantPath: "/new/root/x.mp3", wantState: models.PathExists},
		{name: "prefix must end at separator", location: "/old/rootless.mp3", wantPath: "/old/rootless.mp3", wantState: models.PathMissing},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			track := &models.Track{ID: "1", Location: tt.location}
			r.Resolve(track)

			if !track.Checked {
				t.Error("expected track to be marked checked")
			}
			if track.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", track.Path, tt.wantPath)
			}
			if track.Exists != tt.wantState {
				t.Errorf("state = %v, want %v", track.Exists, tt.wantState)
			}
			if track.Issue != tt.wantIssue {
				t.Errorf("issue = %v, want %v", track.Issue, tt.wantIssue)
			}
		})
	}

	t.Run("result is cached on the track", func(t *testing.T) {
		calls := stub.Calls
		track := &models.Track{ID: "2", Location: "file:///m/here.mp3"}
		r.Resolve(track)
		r.Resolve(track)
		r.ResolveAll([]*models.Track{track, track})
		if stub.Calls != calls+1 {
			t.Errorf("expected one stat call, got %d", stub.Calls-calls)
		}
	})

	t.Run("StatCalls counts filesystem checks", func(t *testing.T) {
		if r.StatCalls() != stub.Calls {
			t.Errorf("expected %d stat calls, got %d", stub.Calls, r.StatCalls())
		}
	})

	t.Run("literal plain paths", func(t *testing.T) {
		lit := &tu.StatStub{Files: map[string]bool{"/Volumes/Music/100% Hits.aif": false}}
		lr := NewResolver(ResolverOptions{CheckExists: true, Literal: true, Stat: lit.Stat})

		hits := &models.Track{ID: "4", Location: "/Volumes/Music/100% Hits.aif"}
		lr.Resolve(hits)
		if hits.Path != "/Volumes/Music/100% Hits.aif" || hits.Exists != models.PathExists || hits.Issue != models.IssueNone {
			t.Errorf("unexpected resolution %q %v %v", hits.Path, hits.Exists, hits.Issue)
		}

		escaped := &models.Track{ID: "5", Location: "/Volumes/Music/a%20b.aif"}
		lr.Resolve(escaped)
		if escaped.Path != "/Volumes/Music/a%20b.aif" {
			t.Errorf("expected path kept verbatim, got %q", escaped.Path)
		}
	})

	t.Run("checks disabled", func(t *testing.T) {
		quiet := &tu.StatStub{}
		nr := NewResolver(ResolverOptions{CheckExists: false, Stat: quiet.Stat})
		track := &models.Track{ID: "3", Location: "file:///m/gone.mp3"}
		nr.Resolve(track)
		if quiet.Calls != 0 {
			t.Errorf("expected no stat calls, got %d", quiet.Calls)
		}
		if track.Path != "/m/gone.mp3" || track.Exists != models.PathUnknown || track.Issue != models.IssueNone {
			t.Errorf("unexpected resolution: %+v", track)
		}
	})

	t.Run("real filesystem", func(t *testing.T) {
		dir := t.TempDir()
		paths := tu.MustTouch(t, filepath.Join(dir, "a b.mp3"))
		nr := NewResolver(ResolverOptions{CheckExists: true})

		present := &models.Track{Location: tu.FileURL(paths[0])}
		absent := &models.Track{Location: tu.FileURL(filepath.Join(dir, "nope.mp3"))}
		nr.ResolveAll([]*models.Track{present, absent})

		if present.Exists != models.PathExists {
			t.Errorf("expected %s to exist, got %v", present.Path, present.Exists)
		}
		if absent.Exists != models.PathMissing {
			t.Errorf("expected %s to be missing, got %v", absent.Path, absent.Exists)
		}
	})

	t.Run("stat errors are not missing", func(t *testing.T) {
		failing := NewResolver(ResolverOptions{CheckExists: true, Stat: func(string) (fs.FileInfo, error) {
			return nil, errors.New("input/output error")
		}})
		track := &models.Track{Location: "/x.mp3"}
		failing.Resolve(track)
		if track.Exists == models.PathMissing {
			t.Error("an I/O error must not be reported as missing")
		}
		if track.Issue != models.IssueStatFailed {
			t.Errorf("expected stat failure issue, got %v", track.Issue)
		}
	})
}
