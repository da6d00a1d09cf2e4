package serpcluster

import "github.com/projectdiscovery/gologger"

// splitOversized breaks every cluster above MaxClusterSize into parts.
// Returns the reshaped cluster list, the number of clusters split and the
// number of chunks that had to be forced.
func (e *Engine) splitOversized(clusters [][]int) ([][]int, int, int) {
	out := make([][]int, 0, len(clusters))
	var splits, forced int
	for _, members := range clusters {
		if len(members) <= e.Options.MaxClusterSize {
			out = append(out, members)
			continue
		}
		parts, f := e.splitCluster(members)
		splits++
		forced += f
		gologger.Verbose().Msgf("split cluster of %d queries into %d parts", len(members), len(parts))
		out = append(out, parts...)
	}
	return out, splits, forced
}

// splitCluster looks for the lowest threshold above MinThreshold at which
// the cluster falls apart into connected components that all fit. When no
// threshold produces an acceptable split, the split with the smallest
// largest component is taken and its oversized components are chunked by
// force.
func (e *Engine) splitCluster(members []int) ([][]int, int) {
	ceiling := e.Options.MinThreshold + 10
	if e.Options.Depth < ceiling {
		ceiling = e.Options.Depth
	}
	var best [][]int
	bestMax := len(members) + 1
	for t := e.Options.MinThreshold + e.Options.Step; t <= ceiling; t += e.Options.Step {
		comps := e.components(members, t)
		if len(comps) <= 1 {
			continue
		}
		largest := 0
		for _, comp := range comps {
			if len(comp) > largest {
				largest = len(comp)
			}
		}
		if largest <= e.Options.MaxClusterSize {
			return comps, 0
		}
		if largest < bestMax {
			best, bestMax = comps, largest
		}
	}
	if best == nil {
		best = [][]int{members}
	}

	out := make([][]int, 0, len(best))
	forced := 0
	for _, comp := range best {
		if len(comp) <= e.Options.MaxClusterSize {
			out = append(out, comp)
			continue
		}
		for start := 0; start < len(comp); start += e.Options.MaxClusterSize {
			end := start + e.Options.MaxClusterSize
			if end > len(comp) {
				end = len(comp)
			}
			out = append(out, comp[start:end])
			forced++
		}
	}
	return out, forced
}

// components partitions members into connected components of the overlap
// graph restricted to edges of weight at least t.
func (e *Engine) components(members []int, t int) [][]int {
	comp := make([]int, len(members))
	for i := range comp {
		comp[i] = -1
	}
	var comps [][]int
	for i := range members {
		if comp[i] >= 0 {
			continue
		}
		c := len(comps)
		comp[i] = c
		stack := []int{i}
		var cur []int
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cur = append(cur, members[v])
			for u := range members {
				if comp[u] < 0 && e.scorer.Score(members[v], members[u]) >= t {
					comp[u] = c
					stack = append(stack, u)
				}
			}
		}
		comps = append(comps, cur)
	}
	return comps
}
