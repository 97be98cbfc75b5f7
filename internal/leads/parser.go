package leads

import (
	"time"
)

// Parser assembles a Lead from one notification. It holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	vocab Vocabulary
	now   func() time.Time
}

// ParserOption customizes a Parser.
type ParserOption func(*Parser)

// WithVocabulary replaces the emirate/developer reference tables.
func WithVocabulary(v Vocabulary) ParserOption {
	return func(p *Parser) {
		p.vocab = v
	}
}

// WithClock sets the clock used for received_at.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewParser creates a parser with the default vocabulary.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		vocab: DefaultVocabulary(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts a lead from a subject line and an HTML body. Individual
// extraction misses leave fields empty; only a body without text is an
// error.
func (p *Parser) Parse(subject, markup string) (*Lead, error) {
	return p.ParseDocument(NewDocument(subject, markup))
}

// ParseDocument is Parse over an already normalized document.
func (p *Parser) ParseDocument(doc *Document) (*Lead, error) {
	if doc.Empty() {
		return nil, ErrEmptyBody
	}

	lead := &Lead{}

	subject := ParseSubject(doc.Subject)
	lead.PropertyType = subject.PropertyType
	lead.TransactionType = subject.TransactionType
	lead.AreaM2 = subject.AreaM2

	for _, ex := range fieldExtractors {
		if value, ok := ex.Extract(doc); ok {
			ex.assign(lead, value)
		}
	}

	if line, ok := ParsePropertyLine(doc.Text); ok {
		lead.City = line.Region
		if emirate, ok := p.vocab.MatchEmirate(line.Region); ok {
			lead.City = emirate
		}
		lead.AreaName = line.AreaName
		lead.SurfaceM2 = line.SurfaceM2
		hasLand := line.HasLand
		lead.HasLand = &hasLand
		lead.Rooms = line.Rooms
		lead.Bedrooms = line.Bedrooms
	}
	if lead.City == "" {
		lead.City, _ = p.vocab.MatchEmirate(doc.Text)
	}

	searchable := doc.Searchable(lead.PropertyTitle)
	lead.Developer, _ = p.vocab.MatchDeveloper(searchable)

	lead.PropertyCategory, lead.CategorySource = DecideCategory(Signals{
		HasLand:      lead.HasLand,
		PropertyType: lead.PropertyType,
		Searchable:   searchable,
	})

	lead.Source = Source
	lead.ReceivedAt = p.now().UTC()
	return lead, nil
}

// MissingFields lists the extractor fields a lead did not receive, for
// debug logging of template drift.
func MissingFields(l *Lead) []string {
	values := map[string]string{
		"contact_name":         l.ContactName,
		"phone":                l.Phone,
		"email":                l.Email,
		"message":              l.Message,
		"country":              l.Country,
		"property_ref":         l.PropertyRef,
		"price":                l.Price,
		"property_title":       l.PropertyTitle,
		"property_url":         l.PropertyURL,
		"profile_analysis_url": l.ProfileAnalysisURL,
	}
	var missing []string
	for _, ex := range fieldExtractors {
		if values[ex.Field] == "" {
			missing = append(missing, ex.Field)
		}
	}
	if l.City == "" {
		missing = append(missing, "city")
	}
	if l.HasLand == nil {
		missing = append(missing, "property_line")
	}
	return missing
}
