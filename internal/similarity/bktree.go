// Package similarity finds known labels close to an unknown one, for
// "did you mean" diagnostics.
package similarity

import (
	"sort"
)

// BKTree indexes labels by edit distance. Comparison is exact and
// case-sensitive: "a" and "A" are one edit apart.
type BKTree struct {
	root *bkNode
	size int
}

type bkNode struct {
	label    string
	children map[int]*bkNode
}

// NewBKTree creates a new empty BK-tree.
func NewBKTree() *BKTree {
	return &BKTree{}
}

// NewIndex builds a tree over labels.
func NewIndex(labels []string) *BKTree {
	t := NewBKTree()
	t.InsertAll(labels)
	return t
}

// Insert adds a label to the tree.
func (t *BKTree) Insert(label string) {
	if label == "" {
		return
	}

	if t.root == nil {
		t.root = &bkNode{label: label, children: make(map[int]*bkNode)}
		t.size++
		return
	}

	current := t.root
	for {
		dist := LevenshteinDistance(label, current.label)
		if dist == 0 {
			return
		}

		child, exists := current.children[dist]
		if !exists {
			current.children[dist] = &bkNode{label: label, children: make(map[int]*bkNode)}
			t.size++
			return
		}
		current = child
	}
}

// InsertAll adds multiple labels to the tree.
func (t *BKTree) InsertAll(labels []string) {
	for _, l := range labels {
		t.Insert(l)
	}
}

// SearchResult holds a search result with its distance.
type SearchResult struct {
	Label    string
	Distance int
}

// Search finds all labels within maxDistance edits of query, in no
// particular order.
func (t *BKTree) Search(query string, maxDistance int) []SearchResult {
	if t.root == nil || query == "" {
		return nil
	}

	var results []SearchResult
	t.searchNode(t.root, query, maxDistance, &results)
	return results
}

func (t *BKTree) searchNode(node *bkNode, query string, maxDistance int, results *[]SearchResult) {
	dist := LevenshteinDistance(query, node.label)
	if dist <= maxDistance {
		*results = append(*results, SearchResult{Label: node.label, Distance: dist})
	}

	// Triangle inequality bounds the children worth visiting.
	lo, hi := dist-maxDistance, dist+maxDistance
	for childDist, child := range node.children {
		if childDist >= lo && childDist <= hi {
			t.searchNode(child, query, maxDistance, results)
		}
	}
}

// Suggest returns up to limit labels within maxDistance of query, nearest
// first and alphabetical among equals. query itself is never suggested.
func (t *BKTree) Suggest(query string, maxDistance, limit int) []string {
	results := t.Search(query, maxDistance)
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Label < results[j].Label
	})

	var out []string
	for _, r := range results {
		if r.Distance == 0 {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.Label)
	}
	return out
}

// Size returns the number of labels in the tree.
func (t *BKTree) Size() int {
	return t.size
}

// Contains checks if a label exists in the tree.
func (t *BKTree) Contains(label string) bool {
	return len(t.Search(label, 0)) > 0
}

// LevenshteinDistance is the rune-level edit distance between s1 and s2,
// computed with two rows of the matrix.
func LevenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}
	if len(r1) > len(r2) {
		r1, r2 = r2, r1
	}

	prev := make([]int, len(r1)+1)
	curr := make([]int, len(r1)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(r2); j++ {
		curr[0] = j
		for i := 1; i <= len(r1); i++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r1)]
}
