package evaluation

import "strings"

// RecallAtK is the fraction of relevant names found in the top k retrieved.
// Names compare case-insensitively. Returns 0 when relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}

	want := nameSet(relevant)
	found := 0
	for _, name := range topK(retrieved, k) {
		if _, ok := want[normalize(name)]; ok {
			found++
			delete(want, normalize(name))
		}
	}
	return float64(found) / float64(len(relevant))
}

// MRRAtK is the reciprocal rank of the first relevant name in the top k
// retrieved, or 0 when none appears.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}

	want := nameSet(relevant)
	for i, name := range topK(retrieved, k) {
		if _, ok := want[normalize(name)]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

func topK(items []string, k int) []string {
	if k >= 0 && k < len(items) {
		return items[:k]
	}
	return items
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[normalize(n)] = struct{}{}
	}
	return set
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
