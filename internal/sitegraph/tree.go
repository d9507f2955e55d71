// Package sitegraph renders the URLs of a crawl as an ASCII path tree.
package sitegraph

import (
	"net/url"
	"sort"
	"strings"

	"github.com/sitescout/sitescout/internal/model"
)

// Node is one path segment in the site tree.
type Node struct {
	Name     string
	Count    int // pages at or under this node
	Children map[string]*Node
}

// Build groups crawled page URLs by path segment under a single root named
// after the host. URLs on other hosts are ignored.
func Build(host string, pages []model.Page) *Node {
	root := &Node{Name: host, Children: make(map[string]*Node)}

	for _, p := range pages {
		u, err := url.Parse(p.URL)
		if err != nil || !sameHost(u.Host, host) {
			continue
		}
		root.Count++

		node := root
		path := strings.Trim(u.Path, "/")
		if path == "" {
			continue
		}
		for _, seg := range strings.Split(path, "/") {
			child, ok := node.Children[seg]
			if !ok {
				child = &Node{Name: seg, Children: make(map[string]*Node)}
				node.Children[seg] = child
			}
			child.Count++
			node = child
		}
	}

	return root
}

// Render draws the tree with box-drawing connectors, children sorted by
// descending page count then name.
func Render(root *Node) string {
	var b strings.Builder
	b.WriteString(root.Name)
	b.WriteByte('\n')
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *Node, prefix string) {
	children := sortedChildren(node)
	for i, child := range children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(child.Name)
		if len(child.Children) > 0 {
			b.WriteString("/")
		}
		b.WriteByte('\n')

		renderChildren(b, child, childPrefix)
	}
}

func sortedChildren(node *Node) []*Node {
	out := make([]*Node, 0, len(node.Children))
	for _, c := range node.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sameHost(a, b string) bool {
	return strings.TrimPrefix(a, "www.") == strings.TrimPrefix(b, "www.")
}
