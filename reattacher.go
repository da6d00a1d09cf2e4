package serpcluster

// reattach gives singletons a second chance against the formed clusters. A
// singleton joins the cluster where its best single-member overlap is
// highest, provided that overlap clears MinThreshold, the cluster has room
// and the geography gate passes against the cluster's highest-frequency
// member. Only clusters that were multi-member when the pass started are
// targets, and their membership is snapshotted so singletons attached
// earlier in the pass never pull in later ones.
func (e *Engine) reattach(clusters [][]int, singletons []int) ([][]int, []int, int) {
	var targets [][]int
	var targetIdx []int
	for ci, members := range clusters {
		if len(members) > 1 {
			targets = append(targets, append([]int(nil), members...))
			targetIdx = append(targetIdx, ci)
		}
	}
	if len(targets) == 0 {
		return clusters, singletons, 0
	}

	var remaining []int
	reattached := 0
	for _, s := range singletons {
		if e.idx.Empty(s) {
			remaining = append(remaining, s)
			continue
		}
		full := len(e.idx.IDSets[s])
		bestScore, bestTarget := 0, -1
		for ti, members := range targets {
			if len(clusters[targetIdx[ti]]) >= e.Options.MaxClusterSize {
				continue
			}
			if !e.compatible(s, e.representative(members)) {
				continue
			}
			limit := len(members)
			if limit > e.Options.ReattachMaxCompare {
				limit = e.Options.ReattachMaxCompare
			}
			score := 0
			for _, m := range members[:limit] {
				if v := e.scorer.Score(s, m); v > score {
					score = v
					if score == full {
						// the whole result set matched, no member can beat it
						break
					}
				}
			}
			if score > bestScore {
				bestScore, bestTarget = score, ti
			}
		}
		if bestTarget >= 0 && bestScore >= e.Options.MinThreshold {
			ci := targetIdx[bestTarget]
			clusters[ci] = append(clusters[ci], s)
			reattached++
			continue
		}
		remaining = append(remaining, s)
	}
	return clusters, remaining, reattached
}

// representative picks the member with the highest search frequency, the
// query that best names what the cluster is about.
func (e *Engine) representative(members []int) int {
	best := members[0]
	for _, m := range members[1:] {
		if e.queries[m].Frequency > e.queries[best].Frequency {
			best = m
		}
	}
	return best
}
