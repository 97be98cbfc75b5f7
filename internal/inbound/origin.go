package inbound

import "strings"

const (
	DefaultAllowedDomain = "green-acres.com"
	DefaultSubjectPhrase = "request for information"
)

// OriginPolicy is the heuristic deciding whether a message came from the
// listing portal. It is not an authenticity check.
type OriginPolicy struct {
	AllowedDomain string
	SubjectPhrase string
}

// DefaultOriginPolicy accepts green-acres.com mail and forwarded inquiries
// that keep the portal's subject line.
func DefaultOriginPolicy() OriginPolicy {
	return OriginPolicy{
		AllowedDomain: DefaultAllowedDomain,
		SubjectPhrase: DefaultSubjectPhrase,
	}
}

// Allows reports whether the envelope sender, the From header or the raw
// message mentions the allowed domain, or the subject carries the phrase.
// Comparisons are case-insensitive.
func (p OriginPolicy) Allows(e Email) bool {
	if domain := strings.ToLower(p.AllowedDomain); domain != "" {
		for _, field := range []string{e.From, e.HeaderFrom, e.Raw} {
			if strings.Contains(strings.ToLower(field), domain) {
				return true
			}
		}
	}
	phrase := strings.ToLower(p.SubjectPhrase)
	return phrase != "" && strings.Contains(strings.ToLower(e.Subject), phrase)
}

// Check returns ErrRejectedOrigin when the policy does not allow e.
func (p OriginPolicy) Check(e Email) error {
	if !p.Allows(e) {
		return ErrRejectedOrigin
	}
	return nil
}
