package platform

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"
)

// Stub is an in-memory Platform for unit tests, mirroring the shape of the
// teacher's lode.StubClient: it records every call it receives and serves
// filesystem/user-database state from plain maps instead of touching the
// real host.
type Stub struct {
	Files   map[string][]byte
	Modes   map[string]os.FileMode
	Owners  map[string][2]int // path -> [uid, gid]
	Dirs    map[string]bool
	Links   map[string]string
	Users   map[string]Passwd
	Groups  map[string]Group
	Calls   []CommandSpec
	NextRC  int
	Uid     int
	OnCall  func(CommandSpec) (CommandResult, error)
}

// NewStub returns an empty Stub platform.
func NewStub() *Stub {
	return &Stub{
		Files:  map[string][]byte{},
		Modes:  map[string]os.FileMode{},
		Owners: map[string][2]int{},
		Dirs:   map[string]bool{},
		Links:  map[string]string{},
		Users:  map[string]Passwd{},
		Groups: map[string]Group{},
	}
}

var _ Platform = (*Stub)(nil)

func (s *Stub) Exists(path string) bool {
	_, ok := s.Files[path]
	return ok || s.Dirs[path] || s.Links[path] != ""
}

func (s *Stub) IsFile(path string) bool {
	_, ok := s.Files[path]
	return ok
}

func (s *Stub) IsDir(path string) bool { return s.Dirs[path] }

func (s *Stub) IsLink(path string) bool { return s.Links[path] != "" }

func (s *Stub) LExists(path string) bool { return s.Exists(path) }

func (s *Stub) Stat(path string) (FileInfo, error) {
	if !s.Exists(path) {
		return FileInfo{}, os.ErrNotExist
	}
	owner := s.Owners[path]
	return FileInfo{
		Mode:    s.Modes[path],
		Uid:     owner[0],
		Gid:     owner[1],
		Size:    int64(len(s.Files[path])),
		ModTime: time.Now(),
		IsDir:   s.Dirs[path],
	}, nil
}

func (s *Stub) LStat(path string) (FileInfo, error) { return s.Stat(path) }

func (s *Stub) Readlink(path string) (string, error) {
	target, ok := s.Links[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return target, nil
}

func (s *Stub) Get(path string) ([]byte, error) {
	data, ok := s.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (s *Stub) Put(path string, data []byte, mode os.FileMode) error {
	s.Files[path] = append([]byte(nil), data...)
	s.Modes[path] = mode
	return nil
}

func (s *Stub) MakeDirs(path string) error {
	// Register every ancestor too, so Exists() is consistent for callers
	// that probe parent components.
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	cur := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur += "/" + p
		s.Dirs[cur] = true
	}
	return nil
}

func (s *Stub) Unlink(path string) error {
	delete(s.Files, path)
	delete(s.Dirs, path)
	delete(s.Links, path)
	return nil
}

func (s *Stub) Symlink(target, linkPath string) error {
	s.Links[linkPath] = target
	return nil
}

func (s *Stub) Chown(path string, uid, gid int) error {
	s.Owners[path] = [2]int{uid, gid}
	return nil
}

func (s *Stub) Chmod(path string, mode os.FileMode) error {
	s.Modes[path] = mode
	return nil
}

func (s *Stub) CheckCall(_ context.Context, spec CommandSpec) (CommandResult, error) {
	s.Calls = append(s.Calls, spec)
	if s.OnCall != nil {
		return s.OnCall(spec)
	}
	result := CommandResult{ExitCode: s.NextRC}
	if s.NextRC != spec.Expected {
		return result, &commandMismatch{rc: s.NextRC, expected: spec.Expected}
	}
	return result, nil
}

// commandMismatch is the Stub's minimal stand-in for the classified
// KindCommand error a real Platform raises; tests assert on ExitCode, not
// on this type.
type commandMismatch struct {
	rc       int
	expected int
}

func (e *commandMismatch) Error() string {
	return "unexpected return code"
}

func (e *commandMismatch) ExitCode() int { return e.rc }

func (s *Stub) GetPwnam(name string) (Passwd, error) {
	u, ok := s.Users[name]
	if !ok {
		return Passwd{}, os.ErrNotExist
	}
	return u, nil
}

func (s *Stub) GetPwuid(uid int) (Passwd, error) {
	for _, u := range s.Users {
		if u.Uid == uid {
			return u, nil
		}
	}
	return Passwd{}, os.ErrNotExist
}

func (s *Stub) GetPwAll() ([]Passwd, error) {
	out := make([]Passwd, 0, len(s.Users))
	for _, u := range s.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Stub) GetGrnam(name string) (Group, error) {
	g, ok := s.Groups[name]
	if !ok {
		return Group{}, os.ErrNotExist
	}
	return g, nil
}

func (s *Stub) GetGrgid(gid int) (Group, error) {
	for _, g := range s.Groups {
		if g.Gid == gid {
			return g, nil
		}
	}
	return Group{}, os.ErrNotExist
}

func (s *Stub) GetGrAll() ([]Group, error) {
	out := make([]Group, 0, len(s.Groups))
	for _, g := range s.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Stub) Getuid() int { return s.Uid }
