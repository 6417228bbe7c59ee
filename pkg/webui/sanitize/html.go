// Package sanitize cleans the HTML fragments extensions contribute to the settings pages.
package sanitize

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	cssSafe   = regexp.MustCompile(".*")
	inputType = regexp.MustCompile(`^(?i)(checkbox|radio|text|hidden)$`)
	fieldName = regexp.MustCompile(`^[A-Za-z0-9_\[\]-]+$`)

	textPolicy = newTextPolicy()
	formPolicy = newFormPolicy()
)

func newTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("center")
	p.AllowAttrs("style").Matching(cssSafe).Globally()
	return p
}

// newFormPolicy extends the text policy with the inputs a preferences block may render.  Forms
// themselves, buttons and script handlers stay forbidden.
func newFormPolicy() *bluemonday.Policy {
	p := newTextPolicy()
	p.AllowElements("label", "input", "fieldset", "legend")
	p.AllowAttrs("for").Matching(fieldName).OnElements("label")
	p.AllowAttrs("type").Matching(inputType).OnElements("input")
	p.AllowAttrs("name").Matching(fieldName).OnElements("input")
	p.AllowAttrs("value").OnElements("input")
	p.AllowAttrs("checked").Matching(regexp.MustCompile(`^(?i)(checked)?$`)).OnElements("input")
	return p
}

// HTML sanitizes the provided html, while attempting to preserve inline CSS styling.
func HTML(html string) (output string, err error) {
	return sanitize(textPolicy, html)
}

// Form sanitizes a preferences block, keeping labels and simple inputs.
func Form(html string) (output string, err error) {
	return sanitize(formPolicy, html)
}

func sanitize(p *bluemonday.Policy, html string) (string, error) {
	output, err := sanitizeStyleTags(html)
	if err != nil {
		return "", err
	}
	return p.Sanitize(output), nil
}

func sanitizeStyleTags(input string) (string, error) {
	r := strings.NewReader(input)
	b := &bytes.Buffer{}
	if err := styleTagFilter(b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

// styleTagFilter rewrites every tag carrying attributes, replacing style values with their
// sanitized form and dropping styles that end up empty.
func styleTagFilter(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	b := make([]byte, 0, 256)
	z := html.NewTokenizer(r)
	for {
		b = b[:0]
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if err == io.EOF {
				return bw.Flush()
			}
			return err
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				if _, err := bw.Write(z.Raw()); err != nil {
					return err
				}
				continue
			}
			b = append(b, '<')
			b = append(b, name...)
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				b = appendAttr(b, key, string(val))
			}
			if tt == html.SelfClosingTagToken {
				b = append(b, '/')
			}
			if _, err := bw.Write(append(b, '>')); err != nil {
				return err
			}
		default:
			if _, err := bw.Write(z.Raw()); err != nil {
				return err
			}
		}
	}
}

func appendAttr(b, key []byte, val string) []byte {
	if strings.EqualFold(string(key), "style") {
		if val = sanitizeStyle(val); val == "" {
			return b
		}
	}
	b = append(b, ' ')
	b = append(b, key...)
	b = append(b, '=', '"')
	b = append(b, html.EscapeString(val)...)
	return append(b, '"')
}
