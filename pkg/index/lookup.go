package index

import "context"

// cancellation is checked once per this many visited nodes.
const checkEvery = 1024

// Point is the locus of a matched substring: Node is the node at or directly
// below the end of the match, Depth the number of symbols matched. When the
// match ends inside an edge, Node is the child that edge leads to.
type Point struct {
	Node  int32
	Depth int
}

// Find walks s from the root one codepoint at a time. It fails on the first
// symbol that has no matching child or does not match the edge label. The
// match may end mid-edge. The empty string matches the root.
func (t *Tree) Find(s string) (Point, bool) {
	if t == nil || len(t.nodes) == 0 {
		return Point{}, false
	}
	q := []rune(s)
	cur := root
	i := 0
	for i < len(q) {
		child, ok := t.nodes[cur].children[q[i]]
		if !ok {
			return Point{}, false
		}
		end := t.edgeEnd(child)
		for k := t.nodes[child].start; k < end && i < len(q); k++ {
			if t.text[k] != q[i] {
				return Point{}, false
			}
			i++
		}
		cur = child
	}
	return Point{Node: cur, Depth: len(q)}, true
}

// Collect returns the word index of every leaf below p. A word appears once
// per occurrence of the matched substring, in no particular order.
func (t *Tree) Collect(p Point) []int {
	out, _ := t.CollectContext(context.Background(), p)
	return out
}

// CollectContext is Collect with cancellation. Only child edges are followed;
// suffix links relate different substrings and never lead to occurrences.
func (t *Tree) CollectContext(ctx context.Context, p Point) ([]int, error) {
	if t == nil || int(p.Node) >= len(t.nodes) || p.Node < 0 {
		return nil, nil
	}
	var out []int
	stack := []int32{p.Node}
	visited := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if w := t.nodes[n].word; w != noWord {
			out = append(out, int(w))
			continue
		}
		for _, child := range t.nodes[n].children {
			stack = append(stack, child)
		}
	}
	return out, nil
}
