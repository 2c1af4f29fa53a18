package markdown

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// RenderRequest configures Render.
type RenderRequest struct {
	Reader   io.Reader
	Writer   io.Writer
	Markdown *Markdown
	Env      any
}

// Render reads a whole Markdown document, renders it to HTML and writes the
// result. A nil Markdown uses New().
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	src, err := ReadDocument(req.Reader)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	md := req.Markdown
	if md == nil {
		md = New()
	}
	out, err := md.RenderString(src, req.Env)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := io.WriteString(req.Writer, out); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

// ReadDocument reads r to the end, validates the input and strips leading
// front matter.
func ReadDocument(r io.Reader) ([]byte, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := ValidateInput(src); err != nil {
		return nil, err
	}
	return StripFrontMatter(src), nil
}

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL      string
	Client   *http.Client
	Writer   io.Writer
	Markdown *Markdown
	Env      any
}

// HTTPRender fetches Markdown over HTTP(S) and renders it to HTML.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) error {
	if req.URL == "" {
		return fmt.Errorf("render http: URL is required")
	}
	if req.Writer == nil {
		return fmt.Errorf("render http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	client := req.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return fmt.Errorf("render http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return fmt.Errorf("render http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("render http: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("render http: status %s", resp.Status)
	}
	return Render(RenderRequest{
		Reader:   resp.Body,
		Writer:   req.Writer,
		Markdown: req.Markdown,
		Env:      req.Env,
	})
}
