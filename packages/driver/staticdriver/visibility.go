package staticdriver

import (
	"strings"

	"golang.org/x/net/html"
)

// nonRendered lists elements whose content is never drawn.
var nonRendered = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

// blocks are separated from their neighbours in visible text.
var blocks = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// displayed reports whether node and all its ancestors are rendered visibly.
func displayed(node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hidden(n) {
			return false
		}
	}
	return true
}

func hidden(n *html.Node) bool {
	if nonRendered[n.Data] {
		return true
	}
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if n.Data == "input" {
		if t, _ := attr(n, "type"); strings.EqualFold(t, "hidden") {
			return true
		}
	}
	style, _ := attr(n, "style")
	decls := parseStyle(style)
	return decls["display"] == "none" || decls["visibility"] == "hidden" || decls["visibility"] == "collapse"
}

// visibleText appends the text of node's rendered descendants.
func visibleText(b *strings.Builder, node *html.Node) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if hidden(c) {
				continue
			}
			if c.Data == "br" {
				b.WriteString("\n")
				continue
			}
			visibleText(b, c)
			if blocks[c.Data] {
				b.WriteString("\n")
			}
		}
	}
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// parseStyle reads an inline style attribute into lower-cased declarations.
func parseStyle(style string) map[string]string {
	decls := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		decls[strings.ToLower(strings.TrimSpace(prop))] = strings.ToLower(value)
	}
	return decls
}
