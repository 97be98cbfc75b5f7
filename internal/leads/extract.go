package leads

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	areaRe = regexp.MustCompile(`([\d,.]+)\s*m²`)

	contactLabelRe = regexp.MustCompile(`(?i)Contact\s+name\s+`)
	contactStopRe  = regexp.MustCompile(`(?i)Phone|E-mail|Message`)
	messageLabelRe = regexp.MustCompile(`(?i)Message\s+`)
	messageStopRe  = regexp.MustCompile(`(?i)Contact\s+name`)

	phoneTextRe = regexp.MustCompile(`(?i)Phone\s+number\s+([\d\s+()-]+)`)
	countryRe   = regexp.MustCompile(`Mr or Mrs .+?\((.+?)\)`)
	refRe       = regexp.MustCompile(`\bRef\b[.:]?\s*([\w-]+)`)

	propertyLineRe = regexp.MustCompile(
		`([A-Z][a-zA-Z\s]+?)\s*:\s*([A-Z][a-zA-Z\s]+?)\s*-\s*Hab surface:\s*([\d,.]+)\s*m²` +
			`(\s*-\s*Land:\s*[\d,.]+\s*m²)?\s*-\s*(\d+)\s*room\s*-\s*(\d+)\s*bedroom`)

	groupedPriceRe  = regexp.MustCompile(`[\d,]+,\d+`)
	currencyPriceRe = regexp.MustCompile(`(\d{5,})\s*AED`)

	brandHeaderRe = regexp.MustCompile(`(?i)background-color:\s*rgb\(8,\s*81,\s*67\)`)
)

const subjectSeparator = " - "

// SubjectFields are the values carried by the dash-delimited subject line,
// e.g. "Request for information - Villa - Buy - Al Badaia 245m² 2,634,000".
type SubjectFields struct {
	PropertyType    string
	TransactionType string
	AreaM2          string
}

// ParseSubject reads the subject convention. Fewer than four segments
// yields zero fields. Only the fourth segment is scanned for the area, so a
// location that itself contains " - " loses whatever follows the dash.
func ParseSubject(subject string) SubjectFields {
	parts := strings.Split(subject, subjectSeparator)
	if len(parts) < 4 {
		return SubjectFields{}
	}
	fields := SubjectFields{
		PropertyType:    strings.TrimSpace(parts[1]),
		TransactionType: strings.TrimSpace(parts[2]),
	}
	if m := areaRe.FindStringSubmatch(strings.TrimSpace(parts[3])); m != nil {
		fields.AreaM2 = m[1]
	}
	return fields
}

// PropertyLine is the composite "Region : Area - Hab surface ..." line.
type PropertyLine struct {
	Region    string
	AreaName  string
	SurfaceM2 string
	HasLand   bool
	Rooms     string
	Bedrooms  string
}

// ParsePropertyLine matches the structured property line in normalized
// text. The optional land clause only contributes its presence.
func ParsePropertyLine(text string) (PropertyLine, bool) {
	m := propertyLineRe.FindStringSubmatch(text)
	if m == nil {
		return PropertyLine{}, false
	}
	return PropertyLine{
		Region:    strings.TrimSpace(m[1]),
		AreaName:  strings.TrimSpace(m[2]),
		SurfaceM2: strings.TrimSpace(m[3]),
		HasLand:   m[4] != "",
		Rooms:     strings.TrimSpace(m[5]),
		Bedrooms:  strings.TrimSpace(m[6]),
	}, true
}

// Extractor pulls one optional field out of a document.
type Extractor struct {
	Field   string
	Extract func(*Document) (string, bool)
	assign  func(*Lead, string)
}

// fieldExtractors are independent of each other; their order only affects
// log output.
var fieldExtractors = []Extractor{
	{Field: "contact_name", Extract: ExtractContactName, assign: func(l *Lead, v string) { l.ContactName = v }},
	{Field: "phone", Extract: ExtractPhone, assign: func(l *Lead, v string) { l.Phone = v }},
	{Field: "email", Extract: ExtractEmail, assign: func(l *Lead, v string) { l.Email = v }},
	{Field: "message", Extract: ExtractMessage, assign: func(l *Lead, v string) { l.Message = v }},
	{Field: "country", Extract: ExtractCountry, assign: func(l *Lead, v string) { l.Country = v }},
	{Field: "property_ref", Extract: ExtractReference, assign: func(l *Lead, v string) { l.PropertyRef = v }},
	{Field: "price", Extract: ExtractPrice, assign: func(l *Lead, v string) { l.Price = v }},
	{Field: "property_title", Extract: ExtractTitle, assign: func(l *Lead, v string) { l.PropertyTitle = v }},
	{Field: "property_url", Extract: ExtractPropertyURL, assign: func(l *Lead, v string) { l.PropertyURL = v }},
	{Field: "profile_analysis_url", Extract: ExtractProfileURL, assign: func(l *Lead, v string) { l.ProfileAnalysisURL = v }},
}

// ExtractContactName returns the text between "Contact name" and the next
// labeled section.
func ExtractContactName(d *Document) (string, bool) {
	return between(d.Text, contactLabelRe, contactStopRe)
}

// ExtractMessage returns the text between "Message" and "Contact name";
// some templates place the message before the contact block.
func ExtractMessage(d *Document) (string, bool) {
	return between(d.Text, messageLabelRe, messageStopRe)
}

// ExtractPhone prefers a tel: link target over the labeled text value.
func ExtractPhone(d *Document) (string, bool) {
	if phone, ok := linkTarget(d, "tel:"); ok {
		return phone, true
	}
	return submatch(phoneTextRe, d.Text)
}

// ExtractEmail returns the first mailto: link target.
func ExtractEmail(d *Document) (string, bool) {
	email, ok := linkTarget(d, "mailto:")
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(email, '?'); i >= 0 {
		email = email[:i]
	}
	return email, email != ""
}

// ExtractCountry reads "Mr or Mrs <name> (<country>)".
func ExtractCountry(d *Document) (string, bool) {
	return submatch(countryRe, d.Text)
}

// ExtractReference reads the listing reference after a "Ref" label.
func ExtractReference(d *Document) (string, bool) {
	return submatch(refRe, d.Text)
}

// ExtractPrice accepts a comma-grouped number, or a bare number of at least
// five digits followed by AED. Small ungrouped numbers such as room counts
// never qualify.
func ExtractPrice(d *Document) (string, bool) {
	if price := groupedPriceRe.FindString(d.Text); price != "" {
		return price, true
	}
	return submatch(currencyPriceRe, d.Text)
}

// ExtractTitle returns the text of the first link that follows the
// brand-colored header block.
func ExtractTitle(d *Document) (string, bool) {
	if d.dom == nil {
		return "", false
	}
	var (
		headerSeen bool
		title      string
		found      bool
	)
	for _, root := range d.dom.Nodes {
		if found {
			break
		}
		walk(root, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return true
			}
			if !headerSeen {
				headerSeen = brandHeaderRe.MatchString(attr(n, "style"))
				return true
			}
			if n.Data == "a" {
				title = strings.TrimSpace(CollapseSpace(goquery.NewDocumentFromNode(n).Text()))
				found = true
				return false
			}
			return true
		})
	}
	return title, found && title != ""
}

// ExtractPropertyURL returns the href of the "more details" link.
func ExtractPropertyURL(d *Document) (string, bool) {
	return linkByText(d, "more details")
}

// ExtractProfileURL returns the href of the "click here" profile link.
func ExtractProfileURL(d *Document) (string, bool) {
	return linkByText(d, "click here")
}

func between(text string, label, stop *regexp.Regexp) (string, bool) {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if end := stop.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

func submatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	return value, value != ""
}

func linkTarget(d *Document, scheme string) (string, bool) {
	if d.dom == nil {
		return "", false
	}
	href, ok := d.dom.Find(`[href^="` + scheme + `"]`).First().Attr("href")
	if !ok {
		return "", false
	}
	target := strings.TrimSpace(strings.TrimPrefix(href, scheme))
	return target, target != ""
}

func linkByText(d *Document, phrase string) (string, bool) {
	if d.dom == nil {
		return "", false
	}
	var href string
	d.dom.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(s.Text()), phrase) {
			return true
		}
		href, _ = s.Attr("href")
		return false
	})
	return href, href != ""
}

// walk visits n and its descendants in document order until visit
// returns false. It reports whether the walk should continue.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
