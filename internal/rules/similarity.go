package rules

import (
	"sort"
	"strings"
)

// suggestionThreshold is the minimum similarity for a typo suggestion.
const suggestionThreshold = 0.5

// closest returns the candidates whose similarity to word reaches the
// threshold, best first. Ties keep the order of candidates. An exact match is
// never suggested.
func closest(word string, candidates []string, limit int) []string {
	type scored struct {
		word  string
		score float64
	}

	word = strings.ToLower(word)
	var matches []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == word {
			continue
		}
		if score := similarity(word, lc); score >= suggestionThreshold {
			matches = append(matches, scored{word: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.word
	}
	return out
}

// similarity returns a score between 0.0 (completely different) and 1.0
// (identical).
func similarity(s1, s2 string) float64 {
	r1, r2 := []rune(s1), []rune(s2)

	// Short words get a boost when the first letter agrees.
	if len(r1) <= 3 || len(r2) <= 3 {
		if s1 == s2 {
			return 1.0
		}
		if len(r1) > 0 && len(r2) > 0 && r1[0] == r2[0] {
			maxLen := float64(max(len(r1), len(r2)) - 1)
			if maxLen == 0 {
				return 0.8
			}
			d := editDistance(string(r1[1:]), string(r2[1:]))
			return 0.5 + 0.5*(1.0-float64(d)/maxLen)
		}
	}

	maxLen := float64(max(len(r1), len(r2)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(s1, s2))/maxLen
}

// editDistance is the optimal string alignment variant of the
// Damerau-Levenshtein distance: insertions, deletions, substitutions and
// adjacent transpositions all cost one.
func editDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	rows, cols := len(r1)+1, len(r2)+1

	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 1; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && r1[i-1] == r2[j-2] && r1[i-2] == r2[j-1] {
				matrix[i][j] = min(matrix[i][j], matrix[i-2][j-2]+1)
			}
		}
	}
	return matrix[rows-1][cols-1]
}
