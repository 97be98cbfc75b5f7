package leads

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Zs}\x{FEFF}\x{2028}\x{2029}]+`)
)

// Document is one notification prepared for extraction: the raw markup,
// its parsed DOM for markup extractors, and a flat text view for pattern
// matching.
type Document struct {
	Subject string
	Markup  string
	Text    string

	// dom is nil when the markup could not be parsed.
	dom *goquery.Document
}

// NewDocument normalizes markup and parses it for markup extractors.
func NewDocument(subject, markup string) *Document {
	doc := &Document{
		Subject: subject,
		Markup:  markup,
		Text:    NormalizeText(markup),
	}
	if dom, err := goquery.NewDocumentFromReader(strings.NewReader(markup)); err == nil {
		doc.dom = dom
	}
	return doc
}

// NormalizeText strips tags and the handful of entities the inquiry
// templates use, composes accented characters (NFC) and collapses
// whitespace runs to single spaces.
func NormalizeText(markup string) string {
	text := tagRe.ReplaceAllString(norm.NFC.String(markup), " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&#x200E;", "")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return CollapseSpace(text)
}

// CollapseSpace folds every whitespace run, including non-breaking and
// other Unicode spaces, into a single ASCII space.
func CollapseSpace(text string) string {
	return whitespaceRe.ReplaceAllString(text, " ")
}

// Empty reports whether the document carries no searchable text.
func (d *Document) Empty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// Searchable is the lowercased text used by the keyword stages.
func (d *Document) Searchable(title string) string {
	return strings.ToLower(strings.Join([]string{title, d.Subject, d.Text}, " "))
}
