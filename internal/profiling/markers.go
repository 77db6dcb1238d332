package profiling

import (
	"mlpipe/domain/dataset"
)

// ColumnProfile summarizes one column for the validation report.
// Numeric fields are zero for categorical columns and vice versa.
type ColumnProfile struct {
	Name    string             `yaml:"name" json:"name"`
	Kind    dataset.ColumnKind `yaml:"kind" json:"kind"`
	Count   int                `yaml:"count" json:"count"`
	Missing int                `yaml:"missing" json:"missing"`

	Summary      *SummaryMarkers      `yaml:"summary,omitempty" json:"summary,omitempty"`
	Distribution *DistributionMarkers `yaml:"distribution,omitempty" json:"distribution,omitempty"`

	Distinct int    `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	TopValue string `yaml:"top_value,omitempty" json:"top_value,omitempty"`
}

// SummaryMarkers are location and spread statistics
type SummaryMarkers struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"std" json:"std"`
	Min    float64 `yaml:"min" json:"min"`
	Q25    float64 `yaml:"q25" json:"q25"`
	Median float64 `yaml:"median" json:"median"`
	Q75    float64 `yaml:"q75" json:"q75"`
	Max    float64 `yaml:"max" json:"max"`
}

// DistributionMarkers describe shape and tail behaviour. NormalityP is the
// Jarque-Bera p-value; shape fields stay zero for constant or tiny samples.
type DistributionMarkers struct {
	Skewness       float64 `yaml:"skewness" json:"skewness"`
	ExcessKurtosis float64 `yaml:"excess_kurtosis" json:"excess_kurtosis"`
	IsNormal       bool    `yaml:"is_normal" json:"is_normal"`
	NormalityP     float64 `yaml:"normality_p" json:"normality_p"`
	Outliers       int     `yaml:"iqr_outliers" json:"iqr_outliers"`
}
