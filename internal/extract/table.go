package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ValueKind selects the parsing rule applied to a table cell.
type ValueKind int

const (
	// RawText keeps the stripped cell text, "N/A" when blank.
	RawText ValueKind = iota
	// Integer parses the leading digit run (optionally signed), "0" on failure.
	Integer
	// Percentage keeps the text only when it contains a '%', else "N/A".
	Percentage
	// PairedCount normalizes an "N (M)" total/won cell, falling back to the
	// bare leading number, then "N/A".
	PairedCount
	// ImageName resolves a proper-noun label from an image inside the cell:
	// alt, then title, then the src path segment, then "Unknown".
	ImageName
	// ImageList resolves every image in the cell the same way and joins the
	// labels with ", ", skipping unresolvable icons. Empty when none resolve.
	ImageList
	// GradedValue prefers the color-sq span the site wraps graded stats in,
	// falling back to the plain cell text. Empty when blank.
	GradedValue
	// SideBoth, SideAttack and SideDefense pull one side's value out of a
	// side-annotated stat cell. Empty when the side is absent.
	SideBoth
	SideAttack
	SideDefense
)

// ColumnRule binds one cell index to a field name and a parsing kind.
type ColumnRule struct {
	Cell  int
	Field string
	Kind  ValueKind
	// Selector narrows the cell to a descendant node before the kind's rule
	// runs. A selector that matches nothing yields the kind's default; there
	// is no fallback to the surrounding cell.
	Selector string
	// Attr reads an attribute off the resolved node instead of its text.
	Attr string
}

// Record is one parsed table row.
type Record map[string]string

var (
	leadingIntRe  = regexp.MustCompile(`^[+-]?\d+`)
	firstIntRe    = regexp.MustCompile(`\d+`)
	pairedCountRe = regexp.MustCompile(`(\d+)\s*\(\s*(\d+)\s*\)`)
	wsRe          = regexp.MustCompile(`\s+`)
)

// ParseTable walks table's rows, skipping headerRows leading rows, and applies
// schema to each remaining row. Rows whose first schema field resolves to that
// field's default are dropped rather than reported: partial pages are normal
// operation, not a fault.
func ParseTable(table *goquery.Selection, schema []ColumnRule, headerRows int) []Record {
	var records []Record
	if table == nil || table.Length() == 0 || len(schema) == 0 {
		return records
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < headerRows {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		rec := make(Record, len(schema))
		for _, col := range schema {
			rec[col.Field] = ParseCell(cells.Eq(col.Cell), col)
		}

		// A row must carry at least its leading field (player, agent or
		// map name) to count as a data row.
		first := schema[0]
		if rec[first.Field] == kindDefault(first.Kind) {
			return
		}
		records = append(records, rec)
	})
	return records
}

// ParseCell applies one column's rule to a single cell: resolve the
// optional selector, then the optional attribute, then the kind.
func ParseCell(cell *goquery.Selection, col ColumnRule) string {
	if cell == nil || cell.Length() == 0 {
		return kindDefault(col.Kind)
	}
	node := cell
	if col.Selector != "" {
		node = cell.Find(col.Selector).First()
		if node.Length() == 0 {
			return kindDefault(col.Kind)
		}
	}
	if col.Attr != "" {
		v, _ := node.Attr(col.Attr)
		if v = strings.TrimSpace(v); v == "" {
			return kindDefault(col.Kind)
		}
		return v
	}
	text := strings.TrimSpace(node.Text())

	switch col.Kind {
	case Integer:
		return ParseLeadingInt(text)
	case Percentage:
		if !strings.Contains(text, "%") {
			return DefaultNA
		}
		return text
	case PairedCount:
		return CleanPairedCount(text)
	case ImageName:
		return ImageLabel(node.Find("img").First())
	case ImageList:
		return imageList(node)
	case GradedValue:
		if v := strings.TrimSpace(node.Find("div.color-sq span").First().Text()); v != "" {
			return v
		}
		return text
	case SideBoth:
		return SideValue(node, "mod-both")
	case SideAttack:
		return SideValue(node, "mod-t")
	case SideDefense:
		return SideValue(node, "mod-ct")
	default:
		if text == "" {
			return DefaultNA
		}
		return text
	}
}

// SideValue pulls one side's value out of a stat cell. The specific
// "side mod-side mod-X" span is preferred, then the bare mod-X class;
// for the both-sides value a cell without any side spans falls back to
// its direct text.
func SideValue(cell *goquery.Selection, sideClass string) string {
	if v := strings.TrimSpace(cell.Find("span.side.mod-side." + sideClass).First().Text()); v != "" {
		return v
	}
	if v := strings.TrimSpace(cell.Find("span." + sideClass).First().Text()); v != "" {
		return v
	}
	if sideClass == "mod-both" {
		if cell.Find("span.mod-t").Length() == 0 && cell.Find("span.mod-ct").Length() == 0 {
			if v := strings.TrimSpace(cell.Text()); v != "" {
				return v
			}
		}
	}
	return ""
}

func imageList(node *goquery.Selection) string {
	var names []string
	node.Find("img").Each(func(_ int, img *goquery.Selection) {
		if name := ImageLabel(img); name != DefaultUnknown {
			names = append(names, name)
		}
	})
	return strings.Join(names, ", ")
}

// SplitList undoes the ", " join ImageList produces.
func SplitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ", ")
}

// ParseLeadingInt extracts the leading (optionally signed) digit run,
// returning "0" when none is present.
func ParseLeadingInt(text string) string {
	m := leadingIntRe.FindString(strings.TrimSpace(text))
	if m == "" {
		return DefaultZero
	}
	if _, err := strconv.Atoi(m); err != nil {
		return DefaultZero
	}
	return strings.TrimPrefix(m, "+")
}

// CleanPairedCount normalizes cells shaped like "12 (4)" where 12 is a total
// and 4 a won count. Whitespace runs are collapsed first since the source
// markup pads these cells with tabs and newlines.
func CleanPairedCount(text string) string {
	text = wsRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return DefaultNA
	}
	if m := pairedCountRe.FindStringSubmatch(text); m != nil {
		return m[1] + " (" + m[2] + ")"
	}
	if m := firstIntRe.FindString(text); m != "" {
		return m
	}
	return DefaultNA
}

// ImageLabel resolves a display name from an image node. The source tags its
// icons inconsistently, so the chain is alt, title, then the file name from
// the src path with hyphens removed and the first letter capitalized.
func ImageLabel(img *goquery.Selection) string {
	if img == nil || img.Length() == 0 {
		return DefaultUnknown
	}

	if alt, _ := img.Attr("alt"); strings.TrimSpace(alt) != "" {
		return titleCase(strings.TrimSpace(alt))
	}
	if title, _ := img.Attr("title"); strings.TrimSpace(title) != "" {
		return titleCase(strings.TrimSpace(title))
	}

	src, _ := img.Attr("src")
	if name := nameFromPath(src); name != "" {
		return name
	}
	return DefaultUnknown
}

// nameFromPath derives a label from the last path segment of an image src,
// e.g. "/img/vlr/game/agents/kill-joy.png" becomes "Killjoy". Labels longer
// than 20 characters or still containing path punctuation are rejected.
func nameFromPath(src string) string {
	if src == "" {
		return ""
	}
	seg := src
	if idx := strings.LastIndex(seg, "/"); idx >= 0 {
		seg = seg[idx+1:]
	}
	if idx := strings.Index(seg, "."); idx >= 0 {
		seg = seg[:idx]
	}
	seg = strings.ReplaceAll(seg, "-", "")
	if seg == "" || len(seg) >= 20 || strings.ContainsAny(seg, "/.") {
		return ""
	}
	return titleCase(seg)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func kindDefault(kind ValueKind) string {
	switch kind {
	case Integer:
		return DefaultZero
	case ImageName:
		return DefaultUnknown
	case ImageList, GradedValue, SideBoth, SideAttack, SideDefense:
		return ""
	default:
		return DefaultNA
	}
}
