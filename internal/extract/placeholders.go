package extract

import (
	"io"

	"golang.org/x/net/html"
)

// Placeholder is an element that the component loader fills at runtime.
type Placeholder struct {
	// ID is the element id, such as "navbar-placeholder".
	ID string

	// Tag is the element name.
	Tag string
}

// Placeholders parses content and returns, in document order, the elements
// whose id is a key of ids.
func Placeholders(content io.Reader, ids map[string]string) ([]Placeholder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	found := make([]Placeholder, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				if _, ok := ids[id]; ok {
					found = append(found, Placeholder{ID: id, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
