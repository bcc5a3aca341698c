package resource

import (
	"regexp"
	"strings"

	"github.com/fuselage-sh/fuselage/argument"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var lineInFileSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "line", Kind: argument.String},
	{Name: "match", Kind: argument.String},
	{Name: "insert_after", Kind: argument.String},
}

// LineInFile ensures a single line is present in, or absent from, a text
// file without otherwise disturbing its contents.
type LineInFile struct {
	Base
}

func NewLineInFile(raw map[string]any) (*LineInFile, error) {
	lp := &LineInFileProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.And{policy.Present("name"), policy.Present("line")},
			Providers: provider.Registry{lp},
		},
		"absent": {
			Name:      "absent",
			Signature: policy.And{policy.Present("name"), policy.Present("line")},
			Providers: provider.Registry{lp},
		},
	}
	b, err := NewBase("LineInFile", lineInFileSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	l := &LineInFile{Base: b}
	if l.id == "" {
		l.id = "LineInFile[" + l.stringField("name") + ":" + l.stringField("line") + "]"
	}
	if l.policyName == "" {
		l.policyName = "apply"
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LineInFile) Name() string        { return l.stringField("name") }
func (l *LineInFile) Line() string        { return l.stringField("line") }
func (l *LineInFile) Match() string       { return l.stringField("match") }
func (l *LineInFile) InsertAfter() string { return l.stringField("insert_after") }

func (l *LineInFile) Validate() error { return l.validatePolicy(l) }

func (l *LineInFile) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(l.id)
	prov, err := l.selectProvider(l, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, l)
}

func (l *LineInFile) Serialize() map[string]any {
	out := map[string]any{"name": l.Name(), "line": l.Line()}
	if l.Present("match") {
		out["match"] = l.Match()
	}
	if l.Present("insert_after") {
		out["insert_after"] = l.InsertAfter()
	}
	if l.policyName != "apply" {
		out["policy"] = l.policyName
	}
	return out
}

// LineInFileProvider implements apply/absent for LineInFile.
type LineInFileProvider struct{}

func (p *LineInFileProvider) Name() string { return "line_in_file" }

func (p *LineInFileProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*LineInFile)
	return ok && (policyName == "apply" || policyName == "absent")
}

func (p *LineInFileProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	l := res.(*LineInFile)

	current, err := ctx.Platform.Get(l.Name())
	if err != nil {
		current = []byte{}
	}
	lines := splitLines(string(current))

	var matcher *regexp.Regexp
	if l.Match() != "" {
		matcher, err = regexp.Compile(l.Match())
		if err != nil {
			return false, fuserrors.Wrap(fuserrors.KindParse, l.id, err)
		}
	}

	switch l.Policy() {
	case "absent":
		out, removed := removeLine(lines, l.Line(), matcher)
		if !removed {
			return false, nil
		}
		if ctx.Simulate {
			return true, nil
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Put(l.Name(), []byte(strings.Join(out, "\n")+"\n"), 0644))
	default:
		out, inserted := ensureLine(lines, l.Line(), matcher, l.InsertAfter())
		if !inserted {
			return false, nil
		}
		if ctx.Simulate {
			return true, nil
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Put(l.Name(), []byte(strings.Join(out, "\n")+"\n"), 0644))
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ensureLine inserts or replaces line, returning the updated line set and
// whether anything changed. When matcher is set, the first line it
// matches is replaced; otherwise line is appended (after insertAfter's
// matching line, if given and found) unless already present verbatim.
func ensureLine(lines []string, line string, matcher *regexp.Regexp, insertAfter string) ([]string, bool) {
	if matcher != nil {
		for i, l := range lines {
			if matcher.MatchString(l) {
				if l == line {
					return lines, false
				}
				out := append([]string(nil), lines...)
				out[i] = line
				return out, true
			}
		}
	} else {
		for _, l := range lines {
			if l == line {
				return lines, false
			}
		}
	}

	if insertAfter != "" {
		anchor, err := regexp.Compile(insertAfter)
		if err == nil {
			for i, l := range lines {
				if anchor.MatchString(l) {
					out := append([]string(nil), lines[:i+1]...)
					out = append(out, line)
					out = append(out, lines[i+1:]...)
					return out, true
				}
			}
		}
	}

	return append(append([]string(nil), lines...), line), true
}

func removeLine(lines []string, line string, matcher *regexp.Regexp) ([]string, bool) {
	out := make([]string, 0, len(lines))
	removed := false
	for _, l := range lines {
		match := l == line
		if matcher != nil {
			match = matcher.MatchString(l)
		}
		if match {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out, removed
}
