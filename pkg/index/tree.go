/*
Package index implements a generalized suffix tree over an ordered word list.

Every word is converted to a sequence of codepoints and terminated with a
sentinel symbol unique to its position in the list, then inserted into one
shared tree with Ukkonen's online construction. Each leaf of the finished tree
terminates exactly one suffix of one word and carries that word's index, so the
subtree under the locus of a substring S holds a leaf for word w if and only if
w contains S.

Nodes live in a single arena (a slice) and refer to each other by int32
handles. Children and suffix links are handles into that arena, which keeps the
sideways suffix-link references free of any ownership concerns. The tree is
immutable once Build returns and may be read from any number of goroutines.

	tree := index.Build([]string{"squire", "quire", "square"})
	if p, ok := tree.Find("quir"); ok {
		words := tree.Collect(p) // [0 1] in some order, possibly repeated
	}
*/
package index

const (
	root    int32 = 0
	noWord  int32 = -1
	openEnd int32 = -1
)

// node is one arena entry. The edge leading into a node is labelled
// text[start:end]; leaves keep end == openEnd and borrow the end offset of the
// word they belong to.
type node struct {
	start    int32
	end      int32
	link     int32
	word     int32
	children map[int32]int32
}

// Tree is a generalized suffix tree built by Build.
type Tree struct {
	nodes   []node
	text    []int32
	wordEnd []int32
}

// Stats describes the shape of a built tree.
type Stats struct {
	Words    int
	Nodes    int
	Leaves   int
	Internal int
	Symbols  int
}

// sentinel returns the terminator symbol for word i. Codepoints are never
// negative, so the value cannot collide with input.
func sentinel(i int32) int32 {
	return -i - 1
}

func newTree(words int) *Tree {
	t := &Tree{
		nodes:   make([]node, 0, 2*words+1),
		wordEnd: make([]int32, 0, words),
	}
	t.nodes = append(t.nodes, node{link: root, word: noWord, children: make(map[int32]int32)})
	return t
}

func (t *Tree) newLeaf(start, word int32) int32 {
	t.nodes = append(t.nodes, node{start: start, end: openEnd, link: root, word: word})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) newInternal(start, end int32) int32 {
	t.nodes = append(t.nodes, node{
		start:    start,
		end:      end,
		link:     root,
		word:     noWord,
		children: make(map[int32]int32, 2),
	})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) edgeEnd(n int32) int32 {
	if e := t.nodes[n].end; e != openEnd {
		return e
	}
	return t.wordEnd[t.nodes[n].word]
}

func (t *Tree) edgeLen(n int32) int32 {
	return t.edgeEnd(n) - t.nodes[n].start
}

func (t *Tree) isLeaf(n int32) bool {
	return t.nodes[n].word != noWord
}

// Words returns the number of words the tree was built from.
func (t *Tree) Words() int {
	if t == nil {
		return 0
	}
	return len(t.wordEnd)
}

// Stats counts the nodes of the tree.
func (t *Tree) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	s := Stats{
		Words:   len(t.wordEnd),
		Nodes:   len(t.nodes),
		Symbols: len(t.text),
	}
	for i := range t.nodes {
		if t.isLeaf(int32(i)) {
			s.Leaves++
		} else {
			s.Internal++
		}
	}
	return s
}
