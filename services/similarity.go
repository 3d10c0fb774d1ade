package services

import (
	"strings"
	"unicode/utf8"
)

// Default thresholds for turning a similarity score into a match decision.
// Merging is destructive, so merge candidates need stronger evidence than
// authorship links.
const (
	DefaultLinkThreshold  = 0.70
	DefaultMergeThreshold = 0.80
)

// ScoreNames returns a confidence in [0,1] that two name strings denote the
// same person. Tiered cascade, first matching rule wins:
//
//  1. equal normalized forms
//  2. equal first token + intersecting surname sets (missing middle names,
//     double surnames)
//  3. equal first initial + intersecting surname sets (initials-only
//     citation forms)
//  4. substring containment either way
//  5. Ratcliff/Obershelp sequence ratio as fuzzy fallback
//
// Rules 2-4 are symmetric by construction, so ScoreNames(a,b)==ScoreNames(b,a).
func ScoreNames(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	ta, tb := strings.Fields(na), strings.Fields(nb)
	if len(ta) >= 2 && len(tb) >= 2 {
		if ta[0] == tb[0] && surnameSetsIntersect(ta, tb) {
			return 0.95
		}
		if firstRune(ta[0]) == firstRune(tb[0]) && surnameSetsIntersect(ta, tb) {
			return 0.85
		}
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.90
	}
	return sequenceRatio(na, nb)
}

// firstRune returns the first rune of s. Normalized tokens can still start
// with a multi-byte letter (ø, æ), so byte indexing is not enough.
func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// surnameSetsIntersect compares everything after the first token. Using sets
// tolerates double surnames cited in either order.
func surnameSetsIntersect(ta, tb []string) bool {
	set := make(map[string]bool, len(ta)-1)
	for _, t := range ta[1:] {
		set[t] = true
	}
	for _, t := range tb[1:] {
		if set[t] {
			return true
		}
	}
	return false
}

// TitlesMatch reports whether two titles plausibly describe the same work.
// Deliberately loose OR: metadata sources differ in punctuation and subtitle
// inclusion, so either a modest sequence ratio or a majority token overlap
// counts.
func TitlesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}
	if sequenceRatio(la, lb) > 0.40 {
		return true
	}

	ta, tb := tokenSet(la), tokenSet(lb)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	common := 0
	for t := range ta {
		if tb[t] {
			common++
		}
	}
	minSize := len(ta)
	if len(tb) < minSize {
		minSize = len(tb)
	}
	return float64(common)/float64(minSize) >= 0.5
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range strings.Fields(NormalizeName(s)) {
		set[t] = true
	}
	return set
}

// sequenceRatio implements the Ratcliff/Obershelp similarity: 2*M/T, where M
// is the total length of matching blocks found by recursive longest-common-
// substring splitting and T the combined length of both strings.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchingBlocks(ra, rb)) / float64(total)
}

func matchingBlocks(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	sum := size
	sum += matchingBlocks(a[:ai], b[:bi])
	sum += matchingBlocks(a[ai+size:], b[bi+size:])
	return sum
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return ai, bi, size
}
