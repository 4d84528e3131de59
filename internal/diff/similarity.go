package diff

import "strings"

// Similarity scores two body fingerprints in [0, 1]. The rename heuristic is
// a bounded fuzzy-match step layered on top of exact-key matching; the
// function and its threshold are deliberately swappable configuration, not a
// hidden constant.
type Similarity func(a, b string) float64

// DefaultRenameThreshold is the similarity above which a unique
// removed/added pair is reclassified as a rename.
const DefaultRenameThreshold = 0.85

// DiceBigram is the default similarity: the Sørensen–Dice coefficient over
// bigrams of fingerprint tokens. Identical fingerprints score 1; disjoint
// token streams score 0.
func DiceBigram(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	ba := bigrams(strings.Fields(a))
	bb := bigrams(strings.Fields(b))
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	overlap := 0
	for gram, n := range ba {
		if m, ok := bb[gram]; ok {
			overlap += min(n, m)
		}
	}
	total := 0
	for _, n := range ba {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2 * float64(overlap) / float64(total)
}

func bigrams(tokens []string) map[string]int {
	grams := make(map[string]int, len(tokens))
	for i := 0; i+1 < len(tokens); i++ {
		grams[tokens[i]+"\x00"+tokens[i+1]]++
	}
	if len(tokens) == 1 {
		grams[tokens[0]]++
	}
	return grams
}
