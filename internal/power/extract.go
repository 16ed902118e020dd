package power

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	yesterdayToken = "YESTERDAY"
	currentToken   = "CURRENT"

	timeBlockSelector = "b, strong"
	valueElement      = "span"
)

// NodePredicate reports whether a node matches some condition.
type NodePredicate func(n *html.Node) bool

// Extract pulls the time block and the two demand values out of doc.
// Any field that cannot be located is left empty.
func Extract(doc *goquery.Document) ExtractedFields {
	var f ExtractedFields

	if b := doc.Find(timeBlockSelector).First(); b.Length() > 0 {
		f.TimeBlock = strings.TrimSpace(b.Text())
	}

	container := FindDemandContainer(doc.Selection)
	if container == nil {
		return f
	}

	f.DemandMetYesterday = valueAfterToken(container, yesterdayToken)
	f.DemandMetCurrent = valueAfterToken(container, currentToken)
	return f
}

// FindDemandContainer returns the first element, in document order, whose text
// contains DemandMetMarker, or nil.
func FindDemandContainer(s *goquery.Selection) *html.Node {
	match := s.Find("*").FilterFunction(func(_ int, el *goquery.Selection) bool {
		return strings.Contains(el.Text(), DemandMetMarker)
	}).First()
	if match.Length() == 0 {
		return nil
	}
	return match.Get(0)
}

// TextContains matches text nodes whose content contains token. Matching is case-sensitive.
func TextContains(token string) NodePredicate {
	return func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.Contains(n.Data, token)
	}
}

// ElementNamed matches element nodes with the given tag name.
func ElementNamed(tag string) NodePredicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// FindDescendant walks the subtree below root in document order and returns the
// first node matching pred.
func FindDescendant(root *html.Node, pred NodePredicate) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := FindDescendant(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindFollowing returns the first node after n in document order matching pred.
// The search is not limited to n's ancestors; it continues to the end of the document.
func FindFollowing(n *html.Node, pred NodePredicate) *html.Node {
	for cur := nextInDocument(n); cur != nil; cur = nextInDocument(cur) {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func valueAfterToken(container *html.Node, token string) string {
	label := FindDescendant(container, TextContains(token))
	if label == nil {
		return ""
	}

	// Element labels have no "next value" semantics.
	switch label.Type {
	case html.TextNode:
		value := FindFollowing(label, ElementNamed(valueElement))
		if value == nil {
			return ""
		}
		return strings.TrimSpace(goquery.NewDocumentFromNode(value).Text())
	default:
		return ""
	}
}
