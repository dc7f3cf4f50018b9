package lineage

import "math"

// Margin is the AAF tolerance allowed when comparing from and to in sample s.
// With cluster statistics it is the sum of both endpoints' confidence half-widths
// (z * stddev / sqrt(members)), never less than the fixed margin.
func Margin(cfg Config, from, to *Node, s int) float64 {
	if !cfg.UseClusterStats || (!from.HasStats() && !to.HasStats()) {
		return cfg.AAFErrorMargin
	}
	return math.Max(stdErr(cfg, from, s)+stdErr(cfg, to, s), cfg.AAFErrorMargin)
}

func stdErr(cfg Config, n *Node, s int) float64 {
	if !n.HasStats() {
		return 0
	}
	return cfg.ConfidenceZ * n.StdDev(s) / math.Sqrt(float64(n.Members()))
}
