package render

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// HTMLToText parses an HTML mail body and emits readable plain text.
// Links keep their label followed by the URL in angle brackets.
func HTMLToText(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var quoteDepth int

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text := strings.Join(strings.Fields(sanitizeForTerminal(n.Data)), " ")
			if text == "" {
				if n.Data != "" && !endsWithSpace(&b) {
					b.WriteByte(' ')
				}
				return
			}
			if unicode.IsSpace(rune(n.Data[0])) && !endsWithSpace(&b) {
				b.WriteByte(' ')
			}
			if quoteDepth > 0 && endsWithNewline(&b) {
				b.WriteString(strings.Repeat("> ", min(quoteDepth, 3)))
			}
			b.WriteString(text)
			if unicode.IsSpace(rune(n.Data[len(n.Data)-1])) {
				b.WriteByte(' ')
			}
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "head", "style", "script", "title", "meta", "link", "img":
				return
			case "br":
				b.WriteByte('\n')
				return
			case "hr":
				b.WriteString("\n-----\n")
				return
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				visitChildren(n, visit)
				b.WriteString("\n\n")
				return
			case "div", "section", "tr":
				visitChildren(n, visit)
				b.WriteByte('\n')
				return
			case "td", "th":
				visitChildren(n, visit)
				b.WriteByte(' ')
				return
			case "li":
				b.WriteString("- ")
				visitChildren(n, visit)
				b.WriteByte('\n')
				return
			case "blockquote":
				quoteDepth++
				visitChildren(n, visit)
				quoteDepth--
				b.WriteByte('\n')
				return
			case "a":
				var inner strings.Builder
				collectText(&inner, n)
				label := strings.TrimSpace(inner.String())
				href := attr(n, "href")
				switch {
				case href == "" || strings.HasPrefix(href, "#"):
					b.WriteString(label)
				case label == "" || label == href:
					b.WriteString(href)
				default:
					b.WriteString(label + " <" + href + ">")
				}
				return
			}
		}
		visitChildren(n, visit)
	}
	visit(doc)
	return tidy(b.String()), nil
}

func endsWithSpace(b *strings.Builder) bool {
	s := b.String()
	return s == "" || s[len(s)-1] == ' ' || s[len(s)-1] == '\n'
}

func endsWithNewline(b *strings.Builder) bool {
	s := b.String()
	return s == "" || s[len(s)-1] == '\n'
}

func visitChildren(n *html.Node, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(sanitizeForTerminal(n.Data))
	case html.ElementNode:
		if strings.EqualFold(n.Data, "br") {
			b.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// PlainText cleans a text/plain body for display and prompting
func PlainText(s string) string {
	return tidy(sanitizeForTerminal(s))
}

// tidy trims trailing spaces per line and collapses runs of blank lines
func tidy(s string) string {
	s = normalizeNewlines(s)
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRightFunc(ln, unicode.IsSpace)
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

// sanitizeForTerminal replaces common rich-text glyphs with ASCII-safe equivalents
func sanitizeForTerminal(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00A0', '\u202F': // NBSP, narrow NBSP
			b.WriteRune(' ')
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u034F', '\u2060', '\u00AD':
			// zero-width, joiners, BOM and soft hyphen
		case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A':
			b.WriteRune(' ')
		case '\u2013', '\u2014':
			b.WriteRune('-')
		case '\u2022', '\u2043', '\u25AA', '\u25CF', '\u25E6':
			b.WriteString("- ")
		case '\u2018', '\u2019':
			b.WriteRune('\'')
		case '\u201C', '\u201D':
			b.WriteRune('"')
		case '\u2026':
			b.WriteString("...")
		default:
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
