package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/chroma/v2"
)

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("expected no-cache request, got %q", r.Header.Get("Cache-Control"))
		}
		switch r.URL.Path {
		case "/panels/about.html":
			w.Write([]byte("<h2>About</h2><p>Hello</p>"))
		case "/panels/lab.md":
			w.Write([]byte("# Lab\n\nSome *notes*."))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCachesByResolvedURL(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	for i := 0; i < 3; i++ {
		page, err := c.Fetch(context.Background(), "panels/about.html")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if page != "<h2>About</h2><p>Hello</p>" {
			t.Errorf("unexpected page %q", page)
		}
	}
	// Same resolved URL through a different spelling
	if _, err := c.Fetch(context.Background(), "/panels/about.html"); err != nil {
		t.Fatalf("absolute path fetch: %v", err)
	}

	if hits.Load() != 1 {
		t.Errorf("expected a single request, got %d", hits.Load())
	}
	if c.Cache().Len() != 1 {
		t.Errorf("expected one cache entry, got %d", c.Cache().Len())
	}
}

func TestFetchStatusError(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, _ := NewClient(ClientConfig{BaseURL: srv.URL + "/"})

	_, err := c.Fetch(context.Background(), "panels/missing.html")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}

	// Failures are not cached
	c.Fetch(context.Background(), "panels/missing.html")
	if hits.Load() != 2 {
		t.Errorf("expected failed fetch to be retried on demand, got %d hits", hits.Load())
	}
}

func TestFetchRendersMarkdown(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	c, _ := NewClient(ClientConfig{BaseURL: srv.URL + "/"})

	page, err := c.Fetch(context.Background(), "panels/lab.md")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(page, "<h1>Lab</h1>") || !strings.Contains(page, "<em>notes</em>") {
		t.Errorf("expected rendered markdown, got %q", page)
	}
}

func TestFetchFromFileSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"panels/work.html": {Data: []byte("<p>Work</p>")},
	}
	c, err := NewClient(ClientConfig{
		BaseURL:    "file:///",
		HTTPClient: &http.Client{Transport: http.NewFileTransportFS(fsys)},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	page, err := c.Fetch(context.Background(), "panels/work.html")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page != "<p>Work</p>" {
		t.Errorf("unexpected page %q", page)
	}

	if _, err := c.Fetch(context.Background(), "panels/none.html"); !errors.Is(err, ErrStatus) {
		t.Errorf("expected ErrStatus for missing file, got %v", err)
	}
}

func TestNewClientRequiresBase(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error without BaseURL")
	}
}

func TestCachePutKeepsFirst(t *testing.T) {
	c := NewCache()
	if got := c.Put("u", "first"); got != "first" {
		t.Errorf("expected first, got %q", got)
	}
	if got := c.Put("u", "second"); got != "first" {
		t.Errorf("expected entry to stay first, got %q", got)
	}
	if page, _ := c.Get("u"); page != "first" {
		t.Errorf("expected first, got %q", page)
	}
}

func TestExtractScripts(t *testing.T) {
	fragment := `<p>hi</p><script type="module" data-x="1">init()</script><div><script src="/a.js"></script></div>`

	scripts, err := ExtractScripts(fragment)
	if err != nil {
		t.Fatalf("ExtractScripts: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(scripts))
	}
	if scripts[0].Text != "init()" || len(scripts[0].Attrs) != 2 {
		t.Errorf("unexpected first script %+v", scripts[0])
	}
	if scripts[1].Src() != "/a.js" {
		t.Errorf("expected src /a.js, got %q", scripts[1].Src())
	}

	markup := scripts[0].Markup()
	if markup != `<script type="module" data-x="1">init()</script>` {
		t.Errorf("unexpected markup %q", markup)
	}
}

func TestPlainText(t *testing.T) {
	fragment := `<h2>About</h2><p>We build <em>things</em>.</p><script>alert(1)</script><ul><li>one</li><li>two</li></ul>`

	want := "About\nWe build things.\none\ntwo"
	if got := PlainText(fragment); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownHighlightsFencedCode(t *testing.T) {
	md := newMarkdown()
	var buf bytes.Buffer
	src := "# Code\n\n```go\npackage main\n```\n\n```nosuchlang\nplain <text>\n```\n"
	if err := md.Convert([]byte(src), &buf); err != nil {
		t.Fatalf("convert: %v", err)
	}
	page := buf.String()

	if !strings.Contains(page, "<pre") || !strings.Contains(page, "style=") {
		t.Errorf("expected inline-styled code block, got %q", page)
	}
	if !strings.Contains(PlainText(page), "package") {
		t.Errorf("highlighted code lost its text: %q", PlainText(page))
	}
	if strings.Contains(page, "plain <text>") {
		t.Errorf("unknown-language block was not escaped: %q", page)
	}
}

func TestMarkdownFormatFailureLeavesNoPartialOutput(t *testing.T) {
	failing := chroma.FormatterFunc(func(w io.Writer, _ *chroma.Style, _ chroma.Iterator) error {
		io.WriteString(w, "<pre class=\"half")
		return errors.New("formatter broke")
	})
	var buf bytes.Buffer
	if err := newMarkdownWith(failing).Convert([]byte("```go\nx := 1 < 2\n```\n"), &buf); err != nil {
		t.Fatalf("convert: %v", err)
	}
	page := buf.String()
	if strings.Contains(page, "half") {
		t.Errorf("partial formatter output leaked: %q", page)
	}
	if !strings.Contains(page, "<pre><code>x := 1 &lt; 2") {
		t.Errorf("expected escaped fallback block, got %q", page)
	}
}
