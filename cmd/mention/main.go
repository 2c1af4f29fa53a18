package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mention"
	"pkt.systems/mention/internal/config"
	"pkt.systems/mention/internal/logging"
	"pkt.systems/mention/markdown"
	"pkt.systems/mention/terminal"
	"pkt.systems/version"
)

const defaultWidth = 80

func init() {
	version.SetDefaultModule("pkt.systems/mention")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath    string
	localDomain   string
	link          string
	domains       []string
	blockDomains  []string
	attrs         []string
	html          bool
	format        string
	width         int
	themeName     string
	osc8          string
	outPath       string
	printMentions bool
	listThemes    bool
	verbose       bool
	logFormat     string
	showVersion   bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flags := pflag.NewFlagSet("mention", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&opts.localDomain, "local-domain", "", "Domain for bare @handles")
	flags.StringVar(&opts.link, "link", "", "Link template with {handle}, {user} and {domain} (default acct:<handle>)")
	flags.StringArrayVar(&opts.domains, "domain", nil, "Per-handle domain as @handle=domain (repeatable)")
	flags.StringArrayVar(&opts.blockDomains, "block-domain", nil, "Never link handles on this domain (repeatable)")
	flags.StringArrayVar(&opts.attrs, "attr", nil, "Extra anchor attribute as name=value (repeatable)")
	flags.BoolVar(&opts.html, "html", false, "Pass raw HTML through")
	flags.StringVarP(&opts.format, "format", "f", config.FormatHTML, "Output format: html|ansi")
	flags.IntVarP(&opts.width, "width", "w", 0, "ANSI output width (0 uses terminal width if available)")
	flags.StringVarP(&opts.themeName, "theme", "t", "default", "ANSI theme name")
	flags.StringVarP(&opts.osc8, "osc8", "8", config.OSC8Auto, "OSC8 hyperlinks: auto|on|off")
	flags.StringVarP(&opts.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVar(&opts.printMentions, "mentions", false, "Print rendered handles to stderr")
	flags.BoolVar(&opts.listThemes, "list-themes", false, "List available themes")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging to stderr")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text|json")
	flags.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mention [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if opts.listThemes {
		printThemes(stdout)
		return 0
	}

	logFormat, err := logging.ParseFormat(opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --log-format: %v\n", err)
		return 2
	}
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(stderr, level, logFormat)

	cfg, err := loadConfig(flags, opts)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	logger.Debug("config loaded", "path", opts.configPath, "format", cfg.Format, "local_domain", cfg.LocalDomain, "html", cfg.HTML)

	reader, closer, err := openInputs(flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	writer, closeOut, err := resolveOutput(opts.outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	md := markdown.New(
		markdown.WithHTML(cfg.HTML),
		markdown.WithLogger(logger),
	).Use(mention.Plugin(cfg.MentionOptions()))
	env := &mention.Env{}

	switch strings.ToLower(cfg.Format) {
	case config.FormatANSI:
		osc8, err := resolveOSC8(cfg.OSC8)
		if err != nil {
			fmt.Fprintf(stderr, "invalid osc8 %q: %v\n", cfg.OSC8, err)
			return 2
		}
		if err := renderANSI(reader, writer, md, env, resolveWidth(cfg.Width), resolveTheme(cfg.Theme), osc8); err != nil {
			fmt.Fprintf(stderr, "render: %v\n", err)
			return 1
		}
	default:
		if err := markdown.Render(markdown.RenderRequest{
			Reader:   reader,
			Writer:   writer,
			Markdown: md,
			Env:      env,
		}); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}
	logger.Debug("rendered", "format", cfg.Format, "mentions", len(env.Mentions))

	if opts.printMentions {
		for _, handle := range env.Mentions {
			fmt.Fprintln(stderr, handle)
		}
	}
	return 0
}

// loadConfig reads the config file and applies the flags that were set on
// the command line over it.
func loadConfig(flags *pflag.FlagSet, opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		if err := config.LoadTOML(cfg, normalizePath(opts.configPath)); err != nil {
			return nil, err
		}
	}
	if flags.Changed("local-domain") {
		cfg.LocalDomain = opts.localDomain
	}
	if flags.Changed("link") {
		cfg.Link = opts.link
	}
	if flags.Changed("html") {
		cfg.HTML = opts.html
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("width") {
		cfg.Width = opts.width
	}
	if flags.Changed("theme") {
		cfg.Theme = opts.themeName
	}
	if flags.Changed("osc8") {
		cfg.OSC8 = opts.osc8
	}
	cfg.BlockDomains = append(cfg.BlockDomains, opts.blockDomains...)
	for _, raw := range opts.domains {
		handle, domain, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("--domain %q: expected @handle=domain", raw)
		}
		if cfg.Domains == nil {
			cfg.Domains = make(map[string]string)
		}
		cfg.Domains[strings.TrimSpace(handle)] = strings.TrimSpace(domain)
	}
	for _, raw := range opts.attrs {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("--attr %q: expected name=value", raw)
		}
		if cfg.Attributes == nil {
			cfg.Attributes = make(map[string]string)
		}
		cfg.Attributes[strings.TrimSpace(name)] = value
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func renderANSI(r io.Reader, w io.Writer, md *markdown.Markdown, env any, width int, theme terminal.Theme, osc8 bool) error {
	src, err := markdown.ReadDocument(r)
	if err != nil {
		return err
	}
	tokens, err := md.Parse(src, env)
	if err != nil {
		return err
	}
	renderer := terminal.NewRenderer(width, theme, terminal.WithOSC8(osc8))
	mention.UseTerminal(renderer)
	if _, err := io.WriteString(w, renderer.Render(tokens, env)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func resolveTheme(name string) terminal.Theme {
	if strings.EqualFold(name, "boring") {
		return terminal.BoringTheme()
	}
	if theme, ok := terminal.ThemeByName(name); ok {
		return theme
	}
	return terminal.DefaultTheme()
}

func printThemes(w io.Writer) {
	names := append(terminal.AvailableThemes(), "boring")
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return terminal.DetectOSC8Support(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

// multiInputReader concatenates sources, opening each one lazily.
type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string, stdin io.Reader) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	if raw == "-" {
		return inputSource{open: func() (io.Reader, io.Closer, error) {
			return os.Stdin, nil, nil
		}}, nil
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openURL(raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return inputSource{open: func() (io.Reader, io.Closer, error) {
				return openFile(path)
			}}, nil
		}
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(raw)
	}}, nil
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string, fallback io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}
