package markdown

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
)

// Option configures a Markdown pipeline.
type Option func(*config)

type config struct {
	html   bool
	xhtml  bool
	breaks bool
	logger *slog.Logger
}

// WithHTML enables raw HTML passthrough. When disabled, raw inline and block
// HTML is kept as literal text.
func WithHTML(enabled bool) Option {
	return func(cfg *config) {
		cfg.html = enabled
	}
}

// WithXHTML renders void elements with a closing slash.
func WithXHTML(enabled bool) Option {
	return func(cfg *config) {
		cfg.xhtml = enabled
	}
}

// WithBreaks renders soft line breaks as <br>.
func WithBreaks(enabled bool) Option {
	return func(cfg *config) {
		cfg.breaks = enabled
	}
}

// WithLogger sets a logger for pipeline diagnostics. Rule execution is logged
// at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// CoreRule runs once per document after inline tokenization. It may mutate
// the token stream in place.
type CoreRule func(tokens []*Token, env any) error

// Plugin extends a pipeline, typically by adding core rules and render rules.
type Plugin func(md *Markdown)

type namedRule struct {
	name string
	fn   CoreRule
}

// Markdown tokenizes Markdown into a flat token stream and renders it to HTML.
// A Markdown value may be reused sequentially; it is not safe for concurrent
// use while plugins are being registered.
type Markdown struct {
	Renderer *Renderer

	cfg    config
	parser parser.Parser
	rules  []namedRule
}

// New returns a CommonMark pipeline.
func New(opts ...Option) *Markdown {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Markdown{
		Renderer: newRenderer(cfg),
		cfg:      cfg,
		parser:   goldmark.DefaultParser(),
	}
}

// Use applies plugins in order.
func (md *Markdown) Use(plugins ...Plugin) *Markdown {
	for _, p := range plugins {
		if p != nil {
			p(md)
		}
	}
	return md
}

// AfterInline appends a rule that runs after inline tokenization. A rule
// registered again under the same name replaces the earlier one in place.
func (md *Markdown) AfterInline(name string, rule CoreRule) {
	for i := range md.rules {
		if md.rules[i].name == name {
			md.rules[i].fn = rule
			return
		}
	}
	md.rules = append(md.rules, namedRule{name: name, fn: rule})
}

// Rules returns the names of registered post-inline rules in execution order.
func (md *Markdown) Rules() []string {
	names := make([]string, 0, len(md.rules))
	for _, r := range md.rules {
		names = append(names, r.name)
	}
	return names
}

// Parse tokenizes src and runs the post-inline rules. env is passed to every
// rule unchanged.
func (md *Markdown) Parse(src []byte, env any) ([]*Token, error) {
	tokens := md.tokenize(src)
	for _, r := range md.rules {
		if r.fn == nil {
			continue
		}
		start := time.Now()
		if err := r.fn(tokens, env); err != nil {
			return nil, fmt.Errorf("parse: rule %s: %w", r.name, err)
		}
		if md.cfg.logger != nil {
			md.cfg.logger.Debug("core rule done", "rule", r.name, "tokens", len(tokens), "duration", time.Since(start))
		}
	}
	return tokens, nil
}

// RenderString parses src and renders it to HTML.
func (md *Markdown) RenderString(src []byte, env any) (string, error) {
	tokens, err := md.Parse(src, env)
	if err != nil {
		return "", err
	}
	return md.Renderer.Render(tokens, env), nil
}
