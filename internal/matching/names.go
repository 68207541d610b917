// Package matching implements team-name normalization and equivalence used by
// the outcome matcher's fallback path. Matching behavior lives here, isolated
// from the batch-sync control flow, so it can be verified on its own.
package matching

import (
	"strings"
	"unicode"
)

// Words skipped when picking the "first significant word" of a team name.
var insignificantWords = map[string]bool{
	"the": true,
	"los": true,
	"las": true,
	"la":  true,
	"de":  true,
	"fc":  true,
	"st":  true,
}

// Normalize lowercases a team name, strips punctuation, and collapses
// whitespace. All equivalence rules operate on normalized names.
func Normalize(name string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '.':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// EquivalentTeamNames reports whether two team names refer to the same team.
// Two names are equivalent when, after normalization, any of these holds:
//
//  1. the names are identical;
//  2. one name contains the other;
//  3. their first significant words match;
//  4. their first two words match.
//
// The rules absorb the usual provider skew ("Boston" vs "Boston Celtics",
// "St. Louis Blues" vs "St Louis Blues") without a lookup table.
func EquivalentTeamNames(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	wa, wb := strings.Fields(na), strings.Fields(nb)
	if fa, fb := firstSignificant(wa), firstSignificant(wb); fa != "" && fa == fb {
		return true
	}
	if len(wa) >= 2 && len(wb) >= 2 && wa[0] == wb[0] && wa[1] == wb[1] {
		return true
	}
	return false
}

// Similarity scores two names in [0, 1] combining token overlap and
// normalized edit distance. The outcome matcher uses it to rank candidates
// when more than one fallback game passes EquivalentTeamNames.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	overlap := tokenOverlap(strings.Fields(na), strings.Fields(nb))
	edit := 1 - float64(levenshtein(na, nb))/float64(max(len(na), len(nb)))
	if overlap > edit {
		return overlap
	}
	return edit
}

func firstSignificant(words []string) string {
	for _, w := range words {
		if !insignificantWords[w] {
			return w
		}
	}
	if len(words) > 0 {
		return words[0]
	}
	return ""
}

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	shared := 0
	for _, w := range b {
		if set[w] {
			shared++
		}
	}
	union := len(set) + len(b) - shared
	return float64(shared) / float64(union)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(min(curr[j-1]+1, prev[j]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
