package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Normalizer tidies raw completion text before it is displayed and encoded into links
type Normalizer struct {
	markupRegex     *regexp.Regexp
	whitespaceRegex *regexp.Regexp
	newlineRegex    *regexp.Regexp
	invisibleRegex  *regexp.Regexp
}

// NewNormalizer creates a new completion normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{
		markupRegex:     regexp.MustCompile(`(?i)</?(p|br|div|html|body|span|ul|ol|li|h[1-6]|strong|em|b|i)\b[^>]*>`),
		whitespaceRegex: regexp.MustCompile(`[^\S\n]+`),
		newlineRegex:    regexp.MustCompile(`\n{3,}`),
		// Zero-width spaces, BOM, soft hyphen and similar
		invisibleRegex: regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{061C}\x{115F}\x{1160}\x{17B4}\x{17B5}\x{180E}\x{2060}-\x{2064}\x{206A}-\x{206F}\x{FFF0}-\x{FFF8}]+`),
	}
}

// Normalize strips invisible characters and, when the model answered with
// HTML markup, flattens it to plain text. Plain prose only loses surrounding whitespace.
func (n *Normalizer) Normalize(text string) string {
	text = n.invisibleRegex.ReplaceAllString(text, "")

	if n.ContainsMarkup(text) {
		if flattened, err := n.flatten(text); err == nil {
			text = flattened
		}
	}

	return strings.TrimSpace(text)
}

// ContainsMarkup reports whether text carries HTML tags the normalizer would flatten
func (n *Normalizer) ContainsMarkup(text string) bool {
	return n.markupRegex.MatchString(text)
}

func (n *Normalizer) flatten(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, meta, link").Remove()

	// Paragraph-level elements become blank-line separated blocks
	doc.Find("p, div, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n\n")
	})
	doc.Find("br, li").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := n.whitespaceRegex.ReplaceAllString(doc.Text(), " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	return n.newlineRegex.ReplaceAllString(text, "\n\n"), nil
}
