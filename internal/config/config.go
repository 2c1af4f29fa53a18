// Package config loads the TOML configuration of the mention command.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"pkt.systems/mention"
	"pkt.systems/mention/markdown"
	"pkt.systems/mention/terminal"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Output formats.
const (
	FormatHTML = "html"
	FormatANSI = "ansi"
)

// OSC 8 modes.
const (
	OSC8Auto = "auto"
	OSC8On   = "on"
	OSC8Off  = "off"
)

// Config is the on-disk configuration.
//
//	local_domain  = "example.com"
//	link          = "https://{domain}/users/{user}"
//	block_domains = ["spam.example"]
//	html          = true
//
//	[domains]
//	"@alice" = "alice.example"
//
//	[attributes]
//	class = "u-url mention"
type Config struct {
	LocalDomain  string            `toml:"local_domain"`
	Link         string            `toml:"link"`
	Domains      map[string]string `toml:"domains"`
	BlockDomains []string          `toml:"block_domains"`
	Attributes   map[string]string `toml:"attributes"`
	HTML         bool              `toml:"html"`
	Format       string            `toml:"format"`
	Theme        string            `toml:"theme"`
	Width        int               `toml:"width"`
	OSC8         string            `toml:"osc8"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Format == "" {
		c.Format = FormatHTML
	}
	if c.Theme == "" {
		c.Theme = "default"
	}
	if c.OSC8 == "" {
		c.OSC8 = OSC8Auto
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path into cfg. Unknown keys are
// rejected.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("config: %s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalid)
	}
	return nil
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is reports whether target is ErrInvalid.
func (e ValidateErrors) Is(target error) bool {
	return target == ErrInvalid
}

// Validate checks the configuration and returns ValidateErrors when any field
// is invalid.
func (c *Config) Validate() error {
	var errs ValidateErrors
	switch strings.ToLower(c.Format) {
	case FormatHTML, FormatANSI:
	default:
		errs = append(errs, ValidationError{Field: "format", Message: fmt.Sprintf("invalid format %q, must be one of: html, ansi", c.Format)})
	}
	switch strings.ToLower(c.OSC8) {
	case OSC8Auto, OSC8On, OSC8Off:
	default:
		errs = append(errs, ValidationError{Field: "osc8", Message: fmt.Sprintf("invalid mode %q, must be one of: auto, on, off", c.OSC8)})
	}
	if c.Width < 0 {
		errs = append(errs, ValidationError{Field: "width", Message: "cannot be negative"})
	}
	if !strings.EqualFold(c.Theme, "boring") {
		if _, ok := terminal.ThemeByName(c.Theme); !ok {
			errs = append(errs, ValidationError{Field: "theme", Message: fmt.Sprintf("unknown theme %q", c.Theme)})
		}
	}
	if strings.Contains(c.LocalDomain, "@") {
		errs = append(errs, ValidationError{Field: "local_domain", Message: "must be a bare domain"})
	}
	if c.Link != "" {
		probe := strings.NewReplacer("{handle}", "h", "{user}", "u", "{domain}", "d").Replace(c.Link)
		if _, err := url.Parse(probe); err != nil {
			errs = append(errs, ValidationError{Field: "link", Message: fmt.Sprintf("invalid URL template: %v", err)})
		}
	}
	for handle, domain := range c.Domains {
		if strings.TrimSpace(domain) == "" {
			errs = append(errs, ValidationError{Field: "domains." + handle, Message: "domain is empty"})
		}
	}
	for name := range c.Attributes {
		if !validAttrName(name) {
			errs = append(errs, ValidationError{Field: "attributes." + name, Message: "invalid attribute name"})
		} else if strings.EqualFold(name, "href") {
			errs = append(errs, ValidationError{Field: "attributes." + name, Message: "href is set by the link template"})
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		return errs
	}
	return nil
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r == '-' || r == '_' || r == ':' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// MentionOptions converts the configuration into resolver hooks. Hooks stay
// nil when the corresponding settings are empty.
func (c *Config) MentionOptions() mention.Options {
	var opts mention.Options
	switch {
	case len(c.Domains) > 0:
		opts.LocalDomain = mention.NewDomainTable(c.Domains, c.LocalDomain).Resolve
	case c.LocalDomain != "":
		opts.LocalDomain = mention.StaticDomain(c.LocalDomain)
	}
	if c.Link != "" || len(c.BlockDomains) > 0 {
		opts.Link = mention.LinkTemplate(c.Link, c.BlockDomains...)
	}
	if len(c.Attributes) > 0 {
		names := make([]string, 0, len(c.Attributes))
		for name := range c.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := make([]markdown.Attr, 0, len(names))
		for _, name := range names {
			attrs = append(attrs, markdown.Attr{Name: name, Value: c.Attributes[name]})
		}
		opts.LinkAttributes = mention.Attributes(attrs...)
	}
	return opts
}
