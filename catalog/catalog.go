// Package catalog loads the static definitions behind transport order
// generation: XML templates, field definitions, rules and reference examples.
//
// Definitions are embedded in the binary. A directory with the same layout
// (templates/, parameters/, rules/, examples/) may be supplied to override
// individual files; overridden files are picked up after ClearCache or by Watch.
package catalog

import (
	"bytes"
	"embed"
	"encoding/xml"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/metrics"
	"github.com/Laisky/transport-order-mcp/order"
)

//go:embed data
var dataFS embed.FS

// ErrNotFound is returned when a definition or example does not exist.
var ErrNotFound = errors.New("not found")

const (
	templateSuffix = ".xml.tmpl"
	partialsFile   = "templates/partials.tmpl"

	// DefaultCacheTTL bounds how long parsed definitions are reused.
	DefaultCacheTTL = 10 * time.Minute
	// DefaultDebounce groups bursts of file events into one reload.
	DefaultDebounce = 300 * time.Millisecond
)

// Catalog serves parsed definitions. It is safe for concurrent use.
type Catalog struct {
	fsys     overlayFS
	dir      string
	cacheTTL time.Duration
	cache    *gocache.Cache
	logger   glog.Logger
	onReload []func(reason string)
	debounce time.Duration
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithDir overlays the embedded definitions with files from dir.
func WithDir(dir string) Option {
	return func(c *Catalog) { c.dir = dir }
}

// WithCacheTTL sets how long parsed definitions are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets the catalog logger.
func WithLogger(lg glog.Logger) Option {
	return func(c *Catalog) {
		if lg != nil {
			c.logger = lg
		}
	}
}

// WithDebounce sets the quiet period Watch waits for before reloading.
func WithDebounce(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithReloadHook registers fn to run after the cache has been cleared.
func WithReloadHook(fn func(reason string)) Option {
	return func(c *Catalog) {
		if fn != nil {
			c.onReload = append(c.onReload, fn)
		}
	}
}

// New builds a catalog and checks that every transport type has a template
// that parses.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		cacheTTL: DefaultCacheTTL,
		debounce: DefaultDebounce,
		logger:   logger.Logger.Named("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}

	lower, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded definitions")
	}

	ov := overlayFS{lower: lower}
	if c.dir != "" {
		info, err := os.Stat(c.dir)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog dir %q", c.dir)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("catalog dir %q is not a directory", c.dir)
		}
		ov.upper = os.DirFS(c.dir)
	}
	c.fsys = ov
	c.cache = gocache.New(c.cacheTTL, 2*c.cacheTTL)

	if err := c.verify(); err != nil {
		return nil, err
	}

	c.logger.Debug("catalog loaded",
		zap.String("dir", c.dir),
		zap.Duration("cache_ttl", c.cacheTTL))
	return c, nil
}

// Dir returns the override directory, or "" when only embedded data is used.
func (c *Catalog) Dir() string { return c.dir }

// verify parses every template and definition file once.
func (c *Catalog) verify() error {
	for _, t := range order.AllTypes {
		if _, err := c.Template(t); err != nil {
			return err
		}
	}
	if _, err := c.transportFile(); err != nil {
		return err
	}
	if _, err := c.FieldRules(); err != nil {
		return err
	}
	if _, err := c.businessFile(); err != nil {
		return err
	}
	return nil
}

// ClearCache drops every cached definition so the next call re-reads files.
func (c *Catalog) ClearCache() {
	c.reload("manual")
}

func (c *Catalog) reload(reason string) {
	c.cache.Flush()
	metrics.GlobalRecorder.RecordCatalogReload(reason)
	for _, fn := range c.onReload {
		fn(reason)
	}
	c.logger.Info("catalog cache cleared", zap.String("reason", reason))
}

// Template returns the parsed XML template of t. Partials are shared by all types.
func (c *Catalog) Template(t order.TransportType) (*template.Template, error) {
	key := "template:" + string(t)
	if v, ok := c.cache.Get(key); ok {
		return v.(*template.Template), nil
	}

	name := "templates/" + string(t) + templateSuffix
	body, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "template for %q", t)
		}
		return nil, errors.Wrapf(err, "read %s", name)
	}
	partials, err := fs.ReadFile(c.fsys, partialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", partialsFile)
	}

	tmpl := template.New(string(t)).Option("missingkey=error").Funcs(template.FuncMap{
		"xml": escapeXML,
	})
	if _, err := tmpl.New("partials").Parse(string(partials)); err != nil {
		return nil, errors.Wrapf(err, "parse %s", partialsFile)
	}
	if _, err := tmpl.Parse(string(body)); err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}

	c.cache.SetDefault(key, tmpl)
	return tmpl, nil
}

// AvailableTemplates lists the transport types that have a template file,
// embedded or overridden, sorted by name.
func (c *Catalog) AvailableTemplates() ([]string, error) {
	files, err := c.fsys.glob("templates/*" + templateSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(path.Base(f), templateSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// TemplateSource reports whether the template of t is "embedded" or an "override".
func (c *Catalog) TemplateSource(t order.TransportType) string {
	return c.fsys.source("templates/" + string(t) + templateSuffix)
}

// TransportParameters returns the transport level definitions of t.
func (c *Catalog) TransportParameters(t order.TransportType) (*TransportParameters, error) {
	f, err := c.transportFile()
	if err != nil {
		return nil, err
	}
	p, ok := f.Types[string(t)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "transport parameters for %q", t)
	}
	return &p, nil
}

// OrderParameters returns the order level definitions of t.
func (c *Catalog) OrderParameters(t order.TransportType) (*OrderParameters, error) {
	var f orderFile
	if err := c.loadYAML("parameters/order.yaml", &f); err != nil {
		return nil, err
	}
	p, ok := f.Types[string(t)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order parameters for %q", t)
	}
	return &p, nil
}

// ItemParameters returns the order item definitions of t.
// Types without order items yield ErrNotFound.
func (c *Catalog) ItemParameters(t order.TransportType) (*ItemParameters, error) {
	var f itemFile
	if err := c.loadYAML("parameters/item.yaml", &f); err != nil {
		return nil, err
	}
	p, ok := f.Types[string(t)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "item parameters for %q", t)
	}
	return &p, nil
}

// FixedParameters returns the values forced onto documents of t. Types
// without fixed values yield an empty set.
func (c *Catalog) FixedParameters(t order.TransportType) (*FixedParameters, error) {
	var f fixedFile
	if err := c.loadYAML("parameters/fixed.yaml", &f); err != nil {
		return nil, err
	}
	p := f.Types[string(t)]
	return &p, nil
}

// BusinessRules returns the input transformation rules ordered by priority.
func (c *Catalog) BusinessRules() ([]BusinessRule, error) {
	f, err := c.transportFile()
	if err != nil {
		return nil, err
	}
	rules := slices.Clone(f.BusinessRules)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules, nil
}

// RulesFor returns the business rules enabled for t, ordered by priority.
func (c *Catalog) RulesFor(t order.TransportType) ([]BusinessRule, error) {
	all, err := c.BusinessRules()
	if err != nil {
		return nil, err
	}
	var out []BusinessRule
	for _, r := range all {
		if r.Applies(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FieldRules returns the structural field rules with their patterns compiled.
func (c *Catalog) FieldRules() ([]FieldRule, error) {
	const key = "compiled:field_rules"
	if v, ok := c.cache.Get(key); ok {
		return v.([]FieldRule), nil
	}

	var f fieldRulesFile
	if err := c.loadYAML("rules/field.yaml", &f); err != nil {
		return nil, err
	}
	for i := range f.Fields {
		if f.Fields[i].Pattern == "" {
			continue
		}
		re, err := regexp.Compile(f.Fields[i].Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "rules/field.yaml: pattern of %s", f.Fields[i].Path)
		}
		f.Fields[i].re = re
	}

	c.cache.SetDefault(key, f.Fields)
	return f.Fields, nil
}

// TypeRules returns the business rules of t.
func (c *Catalog) TypeRules(t order.TransportType) (*TypeRules, error) {
	f, err := c.businessFile()
	if err != nil {
		return nil, err
	}
	r, ok := f.Types[string(t)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "business rules for %q", t)
	}
	return &r, nil
}

// Example returns the reference XML of t.
func (c *Catalog) Example(t order.TransportType) (string, error) {
	key := "example:" + string(t)
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	name := "examples/" + string(t) + ".xml"
	body, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(ErrNotFound, "example for %q", t)
		}
		return "", errors.Wrapf(err, "read %s", name)
	}

	c.cache.SetDefault(key, string(body))
	return string(body), nil
}

func (c *Catalog) transportFile() (*transportFile, error) {
	var f transportFile
	if err := c.loadYAML("parameters/transport.yaml", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Catalog) businessFile() (*businessRulesFile, error) {
	const key = "compiled:business_rules"
	if v, ok := c.cache.Get(key); ok {
		return v.(*businessRulesFile), nil
	}

	var f businessRulesFile
	if err := c.loadYAML("rules/business.yaml", &f); err != nil {
		return nil, err
	}
	for name, r := range f.Types {
		if r.CarrierCreditorPattern == "" {
			continue
		}
		re, err := regexp.Compile(r.CarrierCreditorPattern)
		if err != nil {
			return nil, errors.Wrapf(err, "rules/business.yaml: carrier_creditor_pattern of %s", name)
		}
		r.creditorRe = re
		f.Types[name] = r
	}

	c.cache.SetDefault(key, &f)
	return &f, nil
}

// loadYAML decodes name into out, caching the raw bytes.
func (c *Catalog) loadYAML(name string, out any) error {
	key := "file:" + name
	var body []byte
	if v, ok := c.cache.Get(key); ok {
		body = v.([]byte)
	} else {
		var err error
		if body, err = fs.ReadFile(c.fsys, name); err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		c.cache.SetDefault(key, body)
	}

	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}

func escapeXML(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}

	var buf strings.Builder
	// EscapeText replaces characters that are not legal in XML with U+FFFD.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
