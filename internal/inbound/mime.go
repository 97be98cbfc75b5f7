package inbound

import (
	"encoding/base64"
	"encoding/hex"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
)

var (
	// rawHTMLPartRe finds an HTML part in messages too broken for net/mail.
	rawHTMLPartRe = regexp.MustCompile(`(?is)Content-Type:\s*text/html.*?\r?\n\r?\n(.*?)(?:\r?\n--|\r?\n\.\r?\n|\z)`)
	rawQPRe       = regexp.MustCompile(`(?i)Content-Transfer-Encoding:\s*quoted-printable`)
	rawBase64Re   = regexp.MustCompile(`(?i)Content-Transfer-Encoding:\s*base64`)

	softBreakRe = regexp.MustCompile(`=\r?\n`)
	qpEscapeRe  = regexp.MustCompile(`=([0-9A-Fa-f]{2})`)
	spaceRe     = regexp.MustCompile(`\s`)
)

const maxPartDepth = 8

// ExtractHTMLBody returns the decoded HTML part of a raw RFC 5322 message.
// Well-formed MIME is walked part by part; anything else is sniffed for a
// text/html section, and finally accepted whole when it looks like markup.
func ExtractHTMLBody(raw string) (string, bool) {
	if body, ok := htmlFromMIME(raw); ok {
		return body, true
	}
	if m := rawHTMLPartRe.FindStringSubmatch(raw); m != nil {
		body := m[1]
		if rawQPRe.MatchString(raw) {
			body = DecodeQuotedPrintable(body)
		}
		if rawBase64Re.MatchString(raw) {
			body = DecodeBase64(body)
		}
		return body, true
	}
	if strings.Contains(raw, "<html") || strings.Contains(raw, "<table") {
		return raw, true
	}
	return "", false
}

func htmlFromMIME(raw string) (string, bool) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", false
	}
	return findHTMLPart(msg.Header, msg.Body, 0)
}

// headerGetter is satisfied by both mail.Header and textproto.MIMEHeader.
type headerGetter interface {
	Get(key string) string
}

func findHTMLPart(h headerGetter, body io.Reader, depth int) (string, bool) {
	if depth > maxPartDepth {
		return "", false
	}
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return "", false
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextRawPart()
			if err != nil {
				return "", false
			}
			if html, ok := findHTMLPart(part.Header, part, depth+1); ok {
				return html, true
			}
		}
	}

	if mediaType != "text/html" {
		return "", false
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", false
	}
	return decodeTransfer(string(data), h.Get("Content-Transfer-Encoding")), true
}

func decodeTransfer(body, encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return DecodeQuotedPrintable(body)
	case "base64":
		return DecodeBase64(body)
	default:
		return body
	}
}

// DecodeQuotedPrintable decodes a quoted-printable body. Input the strict
// decoder rejects is decoded leniently: soft line breaks are joined and
// every =XX escape is replaced, leaving other text untouched.
func DecodeQuotedPrintable(body string) string {
	decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(body)))
	if err == nil {
		return string(decoded)
	}
	joined := softBreakRe.ReplaceAllString(body, "")
	return qpEscapeRe.ReplaceAllStringFunc(joined, func(esc string) string {
		b, err := hex.DecodeString(esc[1:])
		if err != nil {
			return esc
		}
		return string(b)
	})
}

// DecodeBase64 decodes a base64 body after dropping line breaks and other
// whitespace. Missing padding is accepted. Undecodable input is returned
// unchanged.
func DecodeBase64(body string) string {
	compact := spaceRe.ReplaceAllString(body, "")
	if decoded, err := base64.StdEncoding.DecodeString(compact); err == nil {
		return string(decoded)
	}
	decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "="))
	if err != nil {
		return body
	}
	return string(decoded)
}

// ParseHeaders reads the From and Subject headers of a raw message,
// decoding RFC 2047 encoded words. Missing headers come back empty.
func ParseHeaders(raw string) (from, subject string) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", ""
	}
	dec := new(mime.WordDecoder)
	decode := func(v string) string {
		if out, err := dec.DecodeHeader(v); err == nil {
			return out
		}
		return v
	}
	return decode(msg.Header.Get("From")), decode(msg.Header.Get("Subject"))
}
