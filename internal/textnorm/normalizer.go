// Package textnorm normalizes free text into the stemmed keyword space the
// catalog tags live in. All scoring depends on this mapping being
// deterministic, so the normalizer carries no state beyond the immutable
// synonym map it was built with.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/russian"
)

// wordRe extracts word tokens, Unicode-aware so Cyrillic input tokenizes
// the same way Latin does.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Normalizer turns raw user text into a set of stemmed canonical roots.
type Normalizer struct {
	synonyms map[string]string
}

// New builds a Normalizer over a stemmed-word -> canonical-root map. Chains
// in the map (a root that is itself a mapped word) are flattened to their
// terminal root, so canonicalizing an already-canonical root changes nothing.
func New(synonyms map[string]string) *Normalizer {
	flat := make(map[string]string, len(synonyms))
	for word, root := range synonyms {
		// seen guards against cycles in bad synonym data.
		seen := map[string]bool{word: true, root: true}
		for {
			next, ok := synonyms[root]
			if !ok || seen[next] {
				break
			}
			seen[next] = true
			root = next
		}
		flat[word] = root
	}
	return &Normalizer{synonyms: flat}
}

// Stem reduces a single lowercase word to its stable Russian snowball stem.
// One snowball pass is not a fixed point on its own output (stripping an
// ending can expose another strippable ending), so the reduction repeats
// until the word stops changing. Tag preparation uses the same reduction.
func Stem(word string) string {
	for {
		next := russian.Stem(word, true)
		if next == word || next == "" {
			return word
		}
		word = next
	}
}

// Normalize lowercases the input, tokenizes it, stems every token and
// collapses each stem to its synonym root when one is registered. The
// result is a set: duplicates merge, order is irrelevant. Empty input
// yields an empty set.
func (n *Normalizer) Normalize(text string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	roots := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		stemmed := Stem(tok)
		if root, ok := n.synonyms[stemmed]; ok {
			stemmed = root
		}
		roots[stemmed] = struct{}{}
	}
	return roots
}

// Intersects reports whether the normalized set shares at least one root
// with keywords.
func Intersects(normalized map[string]struct{}, keywords map[string]struct{}) bool {
	for w := range normalized {
		if _, ok := keywords[w]; ok {
			return true
		}
	}
	return false
}
