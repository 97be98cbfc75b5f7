package inbound

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

func TestExtractHTMLBodyMultipartQuotedPrintable(t *testing.T) {
	raw := crlf(
		"From: Green-Acres <noreply@green-acres.com>",
		"Subject: Request for information - Villa - Buy - Dubai",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain text version",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		`<table><tr><td style=3D"color:red">Hab surface: 245 m=C2=B2 and a ver=`,
		`y long line</td></tr></table>`,
		"--b1--",
		"",
	)

	body, ok := ExtractHTMLBody(raw)
	require.True(t, ok)
	assert.Equal(t, `<table><tr><td style="color:red">Hab surface: 245 m² and a very long line</td></tr></table>`, body)
}

func TestExtractHTMLBodyNestedBase64(t *testing.T) {
	html := "<html><body><p>Contact name Jane</p></body></html>"
	encoded := base64.StdEncoding.EncodeToString([]byte(html))
	raw := crlf(
		"From: noreply@green-acres.com",
		`Content-Type: multipart/mixed; boundary="outer"`,
		"",
		"--outer",
		`Content-Type: multipart/alternative; boundary="inner"`,
		"",
		"--inner",
		"Content-Type: text/html; charset=utf-8",
		"Content-Transfer-Encoding: base64",
		"",
		encoded[:20],
		encoded[20:],
		"--inner--",
		"--outer--",
		"",
	)

	body, ok := ExtractHTMLBody(raw)
	require.True(t, ok)
	assert.Equal(t, html, body)
}

func TestExtractHTMLBodySinglePartHTML(t *testing.T) {
	raw := crlf(
		"From: noreply@green-acres.com",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Message Hello</p>",
	)
	body, ok := ExtractHTMLBody(raw)
	require.True(t, ok)
	assert.Equal(t, "<p>Message Hello</p>", body)
}

func TestExtractHTMLBodyRawSniff(t *testing.T) {
	// No blank line after the headers, so net/mail cannot split the body.
	raw := "garbage preamble\nContent-Type: text/html\nContent-Transfer-Encoding: quoted-printable\n\n<p>a=3Db</p>\n--boundary--"

	body, ok := ExtractHTMLBody(raw)
	require.True(t, ok)
	assert.Equal(t, "<p>a=b</p>", body)
}

func TestExtractHTMLBodyBareMarkup(t *testing.T) {
	raw := "not a mime message\n<table><tr><td>x</td></tr></table>"
	body, ok := ExtractHTMLBody(raw)
	require.True(t, ok)
	assert.Equal(t, raw, body)
}

func TestExtractHTMLBodyNone(t *testing.T) {
	raw := crlf(
		"From: someone@example.com",
		"Content-Type: text/plain",
		"",
		"just text",
	)
	_, ok := ExtractHTMLBody(raw)
	assert.False(t, ok)
}

func TestDecodeQuotedPrintableLenient(t *testing.T) {
	// "=ZZ" is not an escape and passes through.
	assert.Equal(t, "price=ZZ 100 €", DecodeQuotedPrintable("price=ZZ 100 =E2=82=AC"))
	assert.Equal(t, "joined", DecodeQuotedPrintable("joi=\r\nned"))
}

func TestDecodeBase64(t *testing.T) {
	assert.Equal(t, "hello world", DecodeBase64("aGVsbG8g\r\nd29ybGQ="))
	assert.Equal(t, "not base64!", DecodeBase64("not base64!"))
	assert.Equal(t, "<html>hi</html", DecodeBase64("PGh0bWw+aGk8L2h0bWw"))
	assert.Equal(t, "<html>hi</html", DecodeBase64("PGh0bWw+\r\naGk8L2h0bWw="))
}

func TestParseHeaders(t *testing.T) {
	raw := crlf(
		"From: =?UTF-8?Q?Green-Acres_=C3=89mirats?= <noreply@green-acres.com>",
		"Subject: =?UTF-8?B?UmVxdWVzdCBmb3IgaW5mb3JtYXRpb24=?=",
		"",
		"body",
	)
	from, subject := ParseHeaders(raw)
	assert.Equal(t, "Green-Acres Émirats <noreply@green-acres.com>", from)
	assert.Equal(t, "Request for information", subject)
}
