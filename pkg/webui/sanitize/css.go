package sanitize

import (
	"bytes"
	"strings"

	"github.com/gorilla/css/scanner"
)

// allowedProperties lists the CSS properties a settings block may use inline.  Positioning and
// anything able to overlay the host page is left out.
var allowedProperties = map[string]bool{
	"background-color": true,
	"border":           true,
	"border-bottom":    true,
	"border-left":      true,
	"border-radius":    true,
	"border-right":     true,
	"border-top":       true,
	"clear":            true,
	"color":            true,
	"display":          true,
	"font-family":      true,
	"font-size":        true,
	"font-style":       true,
	"font-weight":      true,
	"height":           true,
	"line-height":      true,
	"margin":           true,
	"margin-bottom":    true,
	"margin-left":      true,
	"margin-right":     true,
	"margin-top":       true,
	"max-width":        true,
	"padding":          true,
	"padding-bottom":   true,
	"padding-left":     true,
	"padding-right":    true,
	"padding-top":      true,
	"text-align":       true,
	"text-decoration":  true,
	"vertical-align":   true,
	"white-space":      true,
	"width":            true,
}

// styleState consumes one token, returning the next state or nil to reject the whole style.
type styleState func(b *bytes.Buffer, t *scanner.Token) styleState

// sanitizeStyle keeps the declarations of allowed properties and drops the rest.
func sanitizeStyle(input string) string {
	b := &bytes.Buffer{}
	scan := scanner.New(input)
	state := stateProperty
	for {
		t := scan.Next()
		switch t.Type {
		case scanner.TokenEOF:
			return b.String()
		case scanner.TokenError:
			return ""
		}
		if state = state(b, t); state == nil {
			return ""
		}
	}
}

func stateProperty(b *bytes.Buffer, t *scanner.Token) styleState {
	switch t.Type {
	case scanner.TokenS:
		return stateProperty
	case scanner.TokenIdent:
		if !allowedProperties[strings.ToLower(t.Value)] {
			return stateSkip
		}
		b.WriteString(t.Value)
		return stateValue
	}
	return stateSkip
}

func stateSkip(_ *bytes.Buffer, t *scanner.Token) styleState {
	if isSemicolon(t) {
		return stateProperty
	}
	return stateSkip
}

func stateValue(b *bytes.Buffer, t *scanner.Token) styleState {
	b.WriteString(t.Value)
	if isSemicolon(t) {
		return stateProperty
	}
	return stateValue
}

func isSemicolon(t *scanner.Token) bool {
	return t.Type == scanner.TokenChar && t.Value == ";"
}
