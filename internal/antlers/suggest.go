package antlers

import "sort"

const maxSuggestionDistance = 2

// suggestFields returns up to max blueprint field names within edit
// distance 2 of the unknown name, closest first.
func suggestFields(name string, fields map[string]FieldSpec, max int) []string {
	type candidate struct {
		field    string
		distance int
	}
	var candidates []candidate
	for field := range fields {
		if d := editDistance(name, field); d <= maxSuggestionDistance {
			candidates = append(candidates, candidate{field, d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].field < candidates[j].field
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.field
	}
	return out
}

// editDistance is the Levenshtein distance with two rolling rows.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
