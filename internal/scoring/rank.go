package scoring

import "sort"

// DedupeByScore collapses candidates sharing a twitter ID down to one entry
// each: the one with the strictly greatest score, first-seen winning exact
// ties. Discovery order of the survivors is preserved.
func DedupeByScore(candidates []Scored) []Scored {
	best := make(map[string]int) // twitter ID -> index into out
	var out []Scored

	for _, c := range candidates {
		idx, ok := best[c.Profile.TwitterID]
		if !ok {
			best[c.Profile.TwitterID] = len(out)
			out = append(out, c)
			continue
		}
		if c.Score > out[idx].Score {
			out[idx] = c
		}
	}

	return out
}

// RankTop sorts candidates by score descending and truncates to the quota.
// The sort is stable, so equal scores keep their discovery order. Truncation
// is a hard cap: anything past the quota is discarded for this run.
func RankTop(candidates []Scored, quota int) []Scored {
	ranked := make([]Scored, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if quota >= 0 && len(ranked) > quota {
		ranked = ranked[:quota]
	}
	return ranked
}
