package index

import (
	"time"

	"github.com/charmbracelet/log"
)

// activePoint is where the next extension is applied: edge is the text offset
// of the first symbol on the active edge out of node, length is how far along
// that edge the point sits.
type activePoint struct {
	node   int32
	edge   int32
	length int32
}

// builder carries the online construction state. The tree is shared across
// words; the active point and remainder are reset at every word boundary.
type builder struct {
	t         *Tree
	ap        activePoint
	remainder int32
	word      int32
	// internal node created earlier in the current step that still needs
	// its suffix link; root means none.
	pending int32
}

// Build constructs the generalized suffix tree for words. Word indices are
// slice positions and insertion happens strictly in that order, so repeated
// builds over the same input produce identical trees.
func Build(words []string) *Tree {
	start := time.Now()
	t := newTree(len(words))
	b := &builder{t: t}
	for i, w := range words {
		b.insert(int32(i), w)
	}
	s := t.Stats()
	log.Debugf("Suffix tree built: words=[%d] nodes=[%d] symbols=[%d] in %v",
		s.Words, s.Nodes, s.Symbols, time.Since(start))
	return t
}

// insert appends word and its sentinel to the shared text and runs one
// extension per symbol.
func (b *builder) insert(word int32, s string) {
	t := b.t
	b.word = word
	b.ap = activePoint{node: root}
	b.remainder = 0

	first := int32(len(t.text))
	for _, r := range s {
		t.text = append(t.text, r)
	}
	t.text = append(t.text, sentinel(word))
	t.wordEnd = append(t.wordEnd, first)

	for pos := first; pos < int32(len(t.text)); pos++ {
		t.wordEnd[word] = pos + 1
		b.extend(pos)
	}
}

// extend adds text[pos] to every pending suffix of the current word.
func (b *builder) extend(pos int32) {
	t := b.t
	c := t.text[pos]
	b.pending = root
	b.remainder++

	for b.remainder > 0 {
		if b.ap.length == 0 {
			b.ap.edge = pos
		}
		edgeSym := t.text[b.ap.edge]
		next, ok := t.nodes[b.ap.node].children[edgeSym]
		if !ok {
			leaf := t.newLeaf(pos, b.word)
			t.nodes[b.ap.node].children[edgeSym] = leaf
			b.link(b.ap.node)
		} else {
			if b.walkDown(next) {
				continue
			}
			if t.text[t.nodes[next].start+b.ap.length] == c {
				// already present: the rest of this step is implicit
				b.ap.length++
				b.link(b.ap.node)
				break
			}
			split := t.newInternal(t.nodes[next].start, t.nodes[next].start+b.ap.length)
			t.nodes[b.ap.node].children[edgeSym] = split
			leaf := t.newLeaf(pos, b.word)
			t.nodes[split].children[c] = leaf
			t.nodes[next].start += b.ap.length
			t.nodes[split].children[t.text[t.nodes[next].start]] = next
			b.link(split)
		}

		b.remainder--
		if b.ap.node == root && b.ap.length > 0 {
			b.ap.length--
			b.ap.edge = pos - b.remainder + 1
		} else {
			b.ap.node = t.nodes[b.ap.node].link
		}
	}
}

// walkDown moves the active point onto next when the active length covers
// the whole edge.
func (b *builder) walkDown(next int32) bool {
	l := b.t.edgeLen(next)
	if b.ap.length < l {
		return false
	}
	b.ap.edge += l
	b.ap.length -= l
	b.ap.node = next
	return true
}

// link points the pending node's suffix link at n and makes n pending.
func (b *builder) link(n int32) {
	if b.pending != root {
		b.t.nodes[b.pending].link = n
	}
	b.pending = n
}
