package lineage

import (
	"encoding/json"
	"fmt"

	"lichee/lineage/internal/db"
)

// NewRecord converts a run result into its stored form. top limits the number
// of trees kept (0 keeps all).
func NewRecord(res *Result, top int) (*db.RunRecord, error) {
	net := res.Network
	cfg, err := json.Marshal(net.Config())
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	rec := &db.RunRecord{
		Run: db.Run{
			NumSamples:  net.NumSamples(),
			SampleNames: net.SampleNames(),
			Config:      string(cfg),
			Repairs:     res.Iterations,
			Enumerated:  res.Enumerated,
			Truncated:   res.Truncated,
		},
	}
	for _, g := range res.Removed {
		rec.Run.RemovedGroups = append(rec.Run.RemovedGroups, g.Tag)
	}

	for _, n := range net.Nodes() {
		row := db.NodeRow{
			ID:      int(n.ID),
			Kind:    n.Kind.String(),
			Level:   n.Level,
			Label:   n.Label(),
			Members: n.Members(),
			AAF:     make([]float64, net.NumSamples()),
		}
		for s := range row.AAF {
			row.AAF[s] = n.AAF(s)
		}
		switch n.Kind {
		case KindInternal:
			tag, cluster := n.Group.Tag, n.Cluster
			row.Tag, row.Cluster, row.Robust = &tag, &cluster, n.Group.Robust
			if n.HasStats() {
				row.StdDev = make([]float64, net.NumSamples())
				for s := range row.StdDev {
					row.StdDev[s] = n.StdDev(s)
				}
			}
		case KindLeaf:
			sample := n.Sample
			row.Sample = &sample
		}
		rec.Nodes = append(rec.Nodes, row)
	}

	for _, e := range net.Edges() {
		rec.Edges = append(rec.Edges, db.EdgeRow{From: int(e.From), To: int(e.To)})
	}

	trees := res.Trees
	if top > 0 && len(trees) > top {
		trees = trees[:top]
	}
	for i, t := range trees {
		row := db.TreeRow{Rank: i + 1, Score: t.ErrorScore()}
		for _, e := range t.Edges() {
			row.Edges = append(row.Edges, db.EdgeRow{From: int(e.From), To: int(e.To)})
		}
		rec.Trees = append(rec.Trees, row)
	}
	return rec, nil
}

// SaveResult stores a run result and returns the run id
func SaveResult(d *db.DB, res *Result, top int) (string, error) {
	rec, err := NewRecord(res, top)
	if err != nil {
		return "", err
	}
	id, err := d.SaveRun(rec)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	return id, nil
}
