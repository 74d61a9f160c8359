package compound

import "errors"

// ErrStop can be returned by a PageVisitor to end a walk early. Walk does
// not report it to the caller.
var ErrStop = errors.New("stop walk")

// PageVisitor is called for every page of a compound tree.
type PageVisitor func(p *Page) error

// Walk visits all pages below nodes depth-first in document order.
// Groups are descended into where they appear, so state kept by the
// visitor (such as a running ordinal) carries across group boundaries.
// The first error returned by visit ends the walk.
func Walk(nodes []Node, visit PageVisitor) error {
	err := walk(nodes, visit)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func walk(nodes []Node, visit PageVisitor) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Page:
			if err := visit(n); err != nil {
				return err
			}
		case *Group:
			if err := walk(n.Children, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
