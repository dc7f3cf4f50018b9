package db

// Run represents a row in the runs table
type Run struct {
	ID            string   `json:"id"`
	CreatedAt     int64    `json:"created_at"` // Unix millis
	SchemaVersion int      `json:"schema_version"`
	NumSamples    int      `json:"num_samples"`
	SampleNames   []string `json:"sample_names"`
	Config        string   `json:"config"`         // JSON string
	RemovedGroups []string `json:"removed_groups"` // profile tags dropped by network repair
	Repairs       int      `json:"repairs"`
	Enumerated    int      `json:"enumerated"`
	Truncated     bool     `json:"truncated"`

	// Filled by ListRuns
	NumTrees  int      `json:"num_trees"`
	BestScore *float64 `json:"best_score"`
}

// NodeRow represents a row in the nodes table
type NodeRow struct {
	ID      int       `json:"id"`
	Kind    string    `json:"kind"` // "root", "internal", "leaf"
	Level   int       `json:"level"`
	Label   string    `json:"label"`
	Tag     *string   `json:"tag"`
	Cluster *int      `json:"cluster"`
	Sample  *int      `json:"sample"`
	Members int       `json:"members"`
	Robust  bool      `json:"robust"`
	AAF     []float64 `json:"aaf"`    // one value per sample
	StdDev  []float64 `json:"stddev"` // one value per sample, nil when unknown
}

// EdgeRow is a directed edge between two node ids of the same run
type EdgeRow struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TreeRow is one ranked lineage tree
type TreeRow struct {
	Rank  int       `json:"rank"`
	Score float64   `json:"score"`
	Edges []EdgeRow `json:"edges"`
}

// RunRecord is the full stored form of a run: network nodes and edges plus ranked trees
type RunRecord struct {
	Run   Run       `json:"run"`
	Nodes []NodeRow `json:"nodes"`
	Edges []EdgeRow `json:"edges"`
	Trees []TreeRow `json:"trees"`
}
