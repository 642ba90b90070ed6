package dashboard

import (
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"adoptdash/internal/errors"
)

// DefaultConclusions is shown when no conclusions file is configured.
const DefaultConclusions = `- Technology adoption grows consistently over time.
- Technologies with higher investment and more trained professionals tend to show higher adoption rates.
- Average implementation time shrinks as a technology matures.
- Cloud Computing and API REST stand out as market leaders over the analysed period.
`

// RenderMarkdown converts markdown to HTML.
func RenderMarkdown(md []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML(md, p, renderer))
}

// LoadConclusions reads the markdown file at path, or the built-in text when
// path is empty, and returns both the markdown and its HTML rendering.
func LoadConclusions(path string) (md string, rendered string, err error) {
	if path == "" {
		return DefaultConclusions, RenderMarkdown([]byte(DefaultConclusions)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to read conclusions file %s", path)
	}
	return string(data), RenderMarkdown(data), nil
}
