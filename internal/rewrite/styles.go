// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rewrite

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// styleAttr matches an HTML style attribute whose value holds no double quote.
var styleAttr = regexp.MustCompile(`style="([^"]+)"`)

// Styles replaces every style="css" attribute in text with the object-literal
// form used by MDX, e.g. style={{fontSize: '12px'}}.
func Styles(text string) string {
	return styleAttr.ReplaceAllStringFunc(text, func(match string) string {
		css := styleAttr.FindStringSubmatch(match)[1]
		return "style=" + CSSToObject(css)
	})
}

// InlineStyles returns the style="css" attributes that Styles would rewrite.
func InlineStyles(text string) []string {
	return styleAttr.FindAllString(text, -1)
}

// CSSToObject converts semicolon-separated CSS declarations into a
// double-braced object literal. Declarations without a colon are dropped.
func CSSToObject(css string) string {
	var pairs []string
	for _, decl := range strings.Split(css, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = KebabToCamel(strings.TrimSpace(prop))
		val = strings.ReplaceAll(strings.TrimSpace(val), `"`, `\"`)
		pairs = append(pairs, prop+": '"+val+"'")
	}
	return "{{" + strings.Join(pairs, ", ") + "}}"
}

// KebabToCamel turns a hyphenated CSS property name into camelCase. The
// first word is kept as is; each later word gets an upper-case first letter
// and a lower-case remainder.
func KebabToCamel(name string) string {
	words := strings.Split(name, "-")
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToTitle(r)) + strings.ToLower(word[size:])
}
