package lineage

import "errors"

var (
	ErrNoGroups     = errors.New("no SNV groups")
	ErrNoSamples    = errors.New("number of samples must be positive")
	ErrTagLength    = errors.New("profile tag length does not match number of samples")
	ErrBadTag       = errors.New("profile tag must contain only '0' and '1' and cover at least one sample")
	ErrEmptyGroup   = errors.New("SNV group has no clusters")
	ErrClusterShape = errors.New("cluster vector length does not match group sample count")
	ErrNoLineage    = errors.New("no consistent lineage found")
)
