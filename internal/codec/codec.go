// Package codec reads clustered mutation profiles into SNV groups.
//
// Input is YAML (JSON documents are accepted as well):
//
//	samples: [normal-adj, primary, met1]
//	groups:
//	  - tag: "011"
//	    robust: true
//	    clusters:
//	      - centroid: [0.42, 0.30]
//	        stddev: [0.02, 0.03]
//	        members: 14
package codec

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"lichee/lineage/internal/lineage"
)

var validate = validator.New()

// Dataset is the decoded input file
type Dataset struct {
	Samples []string       `yaml:"samples" validate:"omitempty,dive,required"`
	Groups  []GroupProfile `yaml:"groups" validate:"required,min=1,dive"`
}

// GroupProfile is one profile group with its clusters
type GroupProfile struct {
	Tag      string           `yaml:"tag" validate:"required"`
	Robust   bool             `yaml:"robust"`
	Clusters []ClusterProfile `yaml:"clusters" validate:"required,min=1,dive"`
}

// ClusterProfile is one sub-population of a group
type ClusterProfile struct {
	Centroid []float64 `yaml:"centroid" validate:"required,min=1,dive,gte=0,lte=1"`
	StdDev   []float64 `yaml:"stddev" validate:"omitempty,dive,gte=0"`
	Members  int       `yaml:"members" validate:"gte=0"`
}

// YAMLCodec decodes datasets
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse decodes and validates a dataset
func (c *YAMLCodec) Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parse dataset: empty input")
		}
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := validate.Struct(&ds); err != nil {
		return nil, formatValidationError(err)
	}
	return &ds, nil
}

// ParseFile reads a dataset from path
func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return NewYAMLCodec().Parse(f)
}

// NumSamples is the profile length shared by every group
func (ds *Dataset) NumSamples() (int, error) {
	if len(ds.Samples) > 0 {
		return len(ds.Samples), nil
	}
	if len(ds.Groups) == 0 {
		return 0, lineage.ErrNoGroups
	}
	return len(ds.Groups[0].Tag), nil
}

// SNVGroups converts the profiles into engine groups
func (ds *Dataset) SNVGroups() ([]*lineage.SNVGroup, error) {
	groups := make([]*lineage.SNVGroup, 0, len(ds.Groups))
	for i, gp := range ds.Groups {
		clusters := make([]lineage.Cluster, len(gp.Clusters))
		for j, cp := range gp.Clusters {
			clusters[j] = lineage.Cluster{Centroid: cp.Centroid, StdDev: cp.StdDev, Members: cp.Members}
		}
		g, err := lineage.NewSNVGroup(gp.Tag, gp.Robust, clusters)
		if err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// formatValidationError flattens validator errors into one readable message
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Dataset.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", field, e.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("invalid dataset: %s", strings.Join(msgs, "; "))
}
