package lineage

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the engine parameters shared by the builder, enumerator and ranker
type Config struct {
	// MaxAAF is the allele frequency assigned to the root in every sample
	MaxAAF float64 `yaml:"max_aaf" json:"max_aaf" validate:"gt=0,lte=1"`
	// AAFErrorMargin is the fixed comparison margin and the floor of the statistical margin
	AAFErrorMargin float64 `yaml:"aaf_error_margin" json:"aaf_error_margin" validate:"gte=0,lt=1"`
	// UseClusterStats enables the standard-error margin when clusters carry a stddev
	UseClusterStats bool    `yaml:"use_cluster_stats" json:"use_cluster_stats"`
	ConfidenceZ     float64 `yaml:"confidence_z" json:"confidence_z" validate:"gte=0"`
	// MaxTrees bounds the number of spanning trees enumerated (0 = unbounded)
	MaxTrees int `yaml:"max_trees" json:"max_trees" validate:"gte=0"`
	// MaxSearchCalls bounds the number of recursive search steps (0 = unbounded)
	MaxSearchCalls int `yaml:"max_search_calls" json:"max_search_calls" validate:"gte=0"`
	// MaxRepairIterations bounds network repair rounds (0 = until no group can be removed)
	MaxRepairIterations int `yaml:"max_repair_iterations" json:"max_repair_iterations" validate:"gte=0"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxAAF:          0.5,
		AAFErrorMargin:  0.08,
		UseClusterStats: true,
		ConfidenceZ:     1.96,
		MaxTrees:        10000,
		MaxSearchCalls:  5_000_000,
	}
}

// Validate checks the parameter ranges
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "gt", "gte", "lt", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", strings.ToLower(e.Field()), opWord(e.Tag()), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(e.Field())))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func opWord(tag string) string {
	switch tag {
	case "gt":
		return ">"
	case "gte":
		return ">="
	case "lt":
		return "<"
	default:
		return "<="
	}
}
