package cooking

import (
	"github.com/PuerkitoBio/goquery"

	"cookscrape-backend/lib/htmlutil"
)

// rule is one candidate lookup for a field: a css selector plus an
// optional attribute to read instead of the text content.
type rule struct {
	selector string
	attr     string
}

func (r rule) read(sel *goquery.Selection) string {
	if r.attr != "" {
		return htmlutil.CleanText(sel.AttrOr(r.attr, ""))
	}
	return htmlutil.CleanText(sel.Text())
}

// firstMatch tries each rule in order and returns the first non-empty
// normalized value. Page layouts vary across the site, so most fields
// carry several candidates; all of them missing is a normal case and
// yields "".
func firstMatch(doc *goquery.Document, rules []rule) string {
	for _, r := range rules {
		found := ""
		doc.Find(r.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if v := r.read(sel); v != "" {
				found = v
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// firstMatchList is firstMatch for list-valued fields: the first rule
// whose selection produces at least one non-empty entry wins, entries
// keep document order.
func firstMatchList(doc *goquery.Document, rules []rule) []string {
	for _, r := range rules {
		var items []string
		doc.Find(r.selector).Each(func(_ int, sel *goquery.Selection) {
			if v := r.read(sel); v != "" {
				items = append(items, v)
			}
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}
