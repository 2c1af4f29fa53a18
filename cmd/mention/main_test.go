package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRunHTML(t *testing.T) {
	out, errOut, code := runCLI(t, "hi @foo and @a@b.com", "--local-domain", "x.com", "--mentions")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `href="acct:@foo@x.com"`) || !strings.Contains(out, `href="acct:@a@b.com"`) {
		t.Fatalf("unexpected output %q", out)
	}
	if errOut != "@foo@x.com\n@a@b.com\n" {
		t.Fatalf("unexpected mentions %q", errOut)
	}
}

func TestRunLinkTemplateAndAttrs(t *testing.T) {
	out, errOut, code := runCLI(t, "@a@b.com @c@spam.example",
		"--link", "https://{domain}/@{user}",
		"--block-domain", "spam.example",
		"--attr", "class=mention",
	)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `<a class="mention" href="https://b.com/@a">`) {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "@c@spam.example</p>") {
		t.Fatalf("blocked handle should stay literal: %q", out)
	}
}

func TestRunANSI(t *testing.T) {
	out, errOut, code := runCLI(t, "# Hi @a@b.com", "-f", "ansi", "-t", "boring", "-w", "40", "--osc8", "off")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "# Hi @a@b.com\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mention.toml")
	if err := os.WriteFile(cfgPath, []byte("local_domain = \"cfg.example\"\n[domains]\n\"@bob\" = \"bob.example\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, errOut, code := runCLI(t, "@alice @bob", "-c", cfgPath, "--mentions")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if errOut != "@alice@cfg.example\n@bob@bob.example\n" {
		t.Fatalf("unexpected mentions %q (output %q)", errOut, out)
	}

	_, _, code = runCLI(t, "@alice", "-c", cfgPath, "--local-domain", "@bad")
	if code != 2 {
		t.Fatalf("expected invalid flag override to exit 2, got %d", code)
	}
}

func TestRunErrors(t *testing.T) {
	if _, _, code := runCLI(t, "", "--format", "pdf"); code != 2 {
		t.Fatalf("expected exit 2 for bad format, got %d", code)
	}
	if _, _, code := runCLI(t, "", "--attr", "novalue"); code != 2 {
		t.Fatalf("expected exit 2 for bad attr, got %d", code)
	}
	if _, _, code := runCLI(t, "", "--nope"); code != 2 {
		t.Fatalf("expected exit 2 for unknown flag, got %d", code)
	}
	if _, errOut, code := runCLI(t, "", filepath.Join(t.TempDir(), "missing.md")); code != 1 || errOut == "" {
		t.Fatalf("expected exit 1 for missing input, got %d", code)
	}
	if _, _, code := runCLI(t, "\x00\x01"); code != 1 {
		t.Fatalf("expected exit 1 for binary input, got %d", code)
	}
}

func TestRunOutputFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "nested", "out.html")
	if _, errOut, code := runCLI(t, "@a@b.com", "-o", outPath); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `href="acct:@a@b.com"`) {
		t.Fatalf("unexpected file output %q", data)
	}
}

func TestRunListThemes(t *testing.T) {
	out, _, code := runCLI(t, "", "--list-themes")
	if code != 0 || !strings.Contains(out, "boring\n") || !strings.Contains(out, "nord\n") {
		t.Fatalf("unexpected theme list %q (exit %d)", out, code)
	}
}

func TestOpenInputFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	for _, arg := range []string{path, "file://" + path} {
		reader, closer, err := openInputs([]string{arg}, nil)
		if err != nil {
			t.Fatalf("openInputs %s: %v", arg, err)
		}
		buf, _ := io.ReadAll(reader)
		_ = closer.Close()
		if string(buf) != "hello" {
			t.Fatalf("unexpected content for %s: %q", arg, string(buf))
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stream"))
	}))
	defer srv.Close()
	reader, closer, err := openInputs([]string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs http: %v", err)
	}
	defer func() { _ = closer.Close() }()
	buf, _ := io.ReadAll(reader)
	if string(buf) != "stream" {
		t.Fatalf("unexpected http content: %q", string(buf))
	}
}

func TestOpenInputsConcatenates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	if err := os.WriteFile(first, []byte("one "), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("two"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}
	reader, closer, err := openInputs([]string{first, second}, nil)
	if err != nil {
		t.Fatalf("openInputs concat: %v", err)
	}
	defer func() { _ = closer.Close() }()
	buf, _ := io.ReadAll(reader)
	if string(buf) != "one two" {
		t.Fatalf("unexpected concatenated content: %q", string(buf))
	}
}

func TestOpenInputsStdin(t *testing.T) {
	in := strings.NewReader("piped")
	reader, closer, err := openInputs(nil, in)
	if err != nil || closer != nil || reader != in {
		t.Fatalf("expected stdin passthrough")
	}
}

func TestResolveOSC8(t *testing.T) {
	cases := map[string]bool{
		"on":  true,
		"off": false,
		"1":   true,
		"0":   false,
	}
	for input, want := range cases {
		got, err := resolveOSC8(input)
		if err != nil {
			t.Fatalf("resolveOSC8(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("resolveOSC8(%q)=%v want %v", input, got, want)
		}
	}
	if _, err := resolveOSC8("nope"); err == nil {
		t.Fatalf("expected error for invalid osc8 value")
	}
}

func TestResolveTheme(t *testing.T) {
	if resolveTheme("boring").Name() != "boring" {
		t.Fatalf("expected boring theme")
	}
	if resolveTheme("unknown").Name() != "default" {
		t.Fatalf("expected default fallback")
	}
}
