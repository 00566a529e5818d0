// Package extract converts semi-structured markup into flat records using
// declarative field rules and row schemas.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Common defaults substituted when a field cannot be resolved.
const (
	DefaultNA      = "N/A"
	DefaultZero    = "0"
	DefaultUnknown = "Unknown"
)

// Rule is a declarative path into a page fragment: selector steps applied in
// order, then either the node's text content or a named attribute.
type Rule struct {
	Steps   []string
	Attr    string // empty means text content
	Default string
}

// Extract resolves rule against sel. It never fails: any step that does not
// match, and any whitespace-only result, yields the rule's default. Leading
// and trailing whitespace is always stripped.
func Extract(sel *goquery.Selection, rule Rule) string {
	if sel == nil || sel.Length() == 0 {
		return rule.Default
	}

	cur := sel
	for _, step := range rule.Steps {
		cur = cur.Find(step).First()
		if cur.Length() == 0 {
			return rule.Default
		}
	}

	if rule.Attr != "" {
		v, ok := cur.Attr(rule.Attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return rule.Default
		}
		return v
	}

	text := strings.TrimSpace(cur.Text())
	if text == "" {
		return rule.Default
	}
	return text
}

// Text is shorthand for a single-step text rule.
func Text(sel *goquery.Selection, selector, def string) string {
	return Extract(sel, Rule{Steps: []string{selector}, Default: def})
}

// Attr is shorthand for a single-step attribute rule.
func Attr(sel *goquery.Selection, selector, attr, def string) string {
	return Extract(sel, Rule{Steps: []string{selector}, Attr: attr, Default: def})
}

// OwnText returns sel's stripped text, or def when blank. Used when the
// caller already holds the terminal node.
func OwnText(sel *goquery.Selection, def string) string {
	if sel == nil || sel.Length() == 0 {
		return def
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return def
	}
	return text
}
