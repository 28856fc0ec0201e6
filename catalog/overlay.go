package catalog

import (
	stdErrors "errors"
	"io/fs"
	"sort"
)

// overlayFS reads from upper first and falls back to lower for files that
// upper does not have.
type overlayFS struct {
	upper fs.FS
	lower fs.FS
}

// Open implements fs.FS.
func (o overlayFS) Open(name string) (fs.File, error) {
	if o.upper != nil {
		f, err := o.upper.Open(name)
		if err == nil {
			return f, nil
		}
		if !stdErrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return o.lower.Open(name)
}

// glob returns the union of matches in both layers, sorted and deduplicated.
func (o overlayFS) glob(pattern string) ([]string, error) {
	seen := map[string]struct{}{}
	for _, layer := range []fs.FS{o.lower, o.upper} {
		if layer == nil {
			continue
		}
		matches, err := fs.Glob(layer, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// source reports which layer serves name.
func (o overlayFS) source(name string) string {
	if o.upper != nil {
		if _, err := fs.Stat(o.upper, name); err == nil {
			return "override"
		}
	}
	return "embedded"
}
