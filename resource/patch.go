package resource

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fuselage-sh/fuselage/argument"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var patchSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "source", Kind: argument.String},
}

// Patch applies a unified diff to a target file, idempotently: an
// already-applied patch is detected and reported unchanged.
type Patch struct {
	Base
}

func NewPatch(raw map[string]any) (*Patch, error) {
	pp := &PatchProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.And{policy.Present("name"), policy.Present("source")},
			Providers: provider.Registry{pp},
		},
	}
	b, err := NewBase("Patch", patchSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	p := &Patch{Base: b}
	if p.id == "" {
		p.id = "Patch[" + p.stringField("name") + "]"
	}
	if p.policyName == "" {
		p.policyName = "apply"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Patch) Name() string   { return p.stringField("name") }
func (p *Patch) Source() string { return p.stringField("source") }

func (p *Patch) Validate() error { return p.validatePolicy(p) }

func (p *Patch) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(p.id)
	prov, err := p.selectProvider(p, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, p)
}

func (p *Patch) Serialize() map[string]any {
	return map[string]any{"name": p.Name(), "source": p.Source()}
}

// PatchProvider applies p.Source (a unified diff) to p.Name. There is no
// third-party patch-application library anywhere in the reference corpus
// (nothing in the pack parses or applies unified diffs); this hunk parser
// and applier is hand-rolled stdlib for that reason.
type PatchProvider struct{}

func (pp *PatchProvider) Name() string { return "patch" }

func (pp *PatchProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Patch)
	return ok && policyName == "apply"
}

func (pp *PatchProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	p := res.(*Patch)

	current, err := ctx.Platform.Get(p.Name())
	if err != nil {
		return false, fuserrors.Wrap(fuserrors.KindPathComponentMissing, p.id, err)
	}

	hunks, err := parseHunks(p.Source())
	if err != nil {
		return false, fuserrors.Wrap(fuserrors.KindParse, p.id, err)
	}

	applied, alreadyApplied, err := applyHunks(string(current), hunks)
	if err != nil {
		return false, fuserrors.Wrap(fuserrors.KindExecution, p.id, err)
	}
	if alreadyApplied {
		return false, nil
	}

	if ctx.Simulate {
		return true, nil
	}
	return true, ctx.RaiseOrLog(ctx.Platform.Put(p.Name(), []byte(applied), 0644))
}

type hunk struct {
	oldStart int
	oldLines []string
	newLines []string
}

// parseHunks parses the @@ -a,b +c,d @@ hunk headers and body lines of a
// unified diff, ignoring file headers (---/+++).
func parseHunks(diff string) ([]hunk, error) {
	var hunks []hunk
	var cur *hunk

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
			continue
		case strings.HasPrefix(line, "@@"):
			if cur != nil {
				hunks = append(hunks, *cur)
			}
			start, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			cur = &hunk{oldStart: start}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "-"):
			cur.oldLines = append(cur.oldLines, line[1:])
		case strings.HasPrefix(line, "+"):
			cur.newLines = append(cur.newLines, line[1:])
		case strings.HasPrefix(line, " "):
			cur.oldLines = append(cur.oldLines, line[1:])
			cur.newLines = append(cur.newLines, line[1:])
		}
	}
	if cur != nil {
		hunks = append(hunks, *cur)
	}
	return hunks, nil
}

func parseHunkHeader(line string) (int, error) {
	// "@@ -12,5 +12,6 @@" -> old start line 12
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed hunk header %q", line)
	}
	old := strings.TrimPrefix(fields[1], "-")
	old, _, _ = strings.Cut(old, ",")
	n, err := strconv.Atoi(old)
	if err != nil {
		return 0, fmt.Errorf("malformed hunk header %q: %w", line, err)
	}
	return n, nil
}

// applyHunks applies hunks to content. It returns alreadyApplied=true
// when every hunk's newLines block is already present at its target
// location, so a repeat apply is a no-op.
func applyHunks(content string, hunks []hunk) (string, bool, error) {
	lines := strings.Split(content, "\n")

	allApplied := true
	for _, h := range hunks {
		if !blockPresentAt(lines, h.oldStart-1, h.newLines) {
			allApplied = false
			break
		}
	}
	if allApplied {
		return content, true, nil
	}

	var buf bytes.Buffer
	cursor := 0
	for _, h := range hunks {
		start := h.oldStart - 1
		if start < cursor || start > len(lines) {
			return "", false, fmt.Errorf("hunk at line %d does not apply", h.oldStart)
		}
		for _, l := range lines[cursor:start] {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		if !blockPresentAt(lines, start, h.oldLines) {
			return "", false, fmt.Errorf("context mismatch at line %d", h.oldStart)
		}
		for _, l := range h.newLines {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		cursor = start + len(h.oldLines)
	}
	for _, l := range lines[cursor:] {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	return strings.TrimSuffix(buf.String(), "\n"), false, nil
}

func blockPresentAt(lines []string, start int, block []string) bool {
	if start < 0 || start+len(block) > len(lines) {
		return false
	}
	for i, l := range block {
		if lines[start+i] != l {
			return false
		}
	}
	return true
}
