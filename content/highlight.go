package content

import (
	"bytes"
	"html"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// CodeStyle is the chroma style used for fenced code blocks in markdown pages.
const CodeStyle = "monokai"

// newMarkdown returns the markdown converter for panel pages.
func newMarkdown() goldmark.Markdown {
	return newMarkdownWith(chromahtml.New(chromahtml.WithClasses(false)))
}

func newMarkdownWith(formatter chroma.Formatter) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&codeRenderer{
				formatter: formatter,
				style:     styles.Get(CodeStyle),
			}, 100)),
		),
	)
}

// codeRenderer renders fenced code blocks with inline-styled syntax
// highlighting. Blocks in unknown languages are highlighted as plain text.
type codeRenderer struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := n.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	out, err := r.highlight(string(block.Language(source)), code.String())
	if err != nil {
		// Fall back to an escaped, unstyled block.
		out = []byte("<pre><code>" + html.EscapeString(code.String()) + "</code></pre>\n")
	}
	_, _ = w.Write(out)
	return ast.WalkContinue, nil
}

// highlight formats code into a buffer so a failed format leaves nothing
// half written.
func (r *codeRenderer) highlight(lang, code string) ([]byte, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, it); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
