package profiling

import (
	"sort"

	"mlpipe/domain/dataset"
)

// DataProfiler profiles every column of a table
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		analyzer: NewDistributionAnalyzer(),
	}
}

// ProfileColumn summarizes a single column
func (dp *DataProfiler) ProfileColumn(col *dataset.Column) ColumnProfile {
	profile := ColumnProfile{
		Name:    col.Name,
		Kind:    col.Kind,
		Count:   col.Len(),
		Missing: col.MissingCount(),
	}

	if col.IsNumeric() {
		present := col.Present()
		if len(present) == 0 {
			return profile
		}
		summary, dist, err := dp.analyzer.AnalyzeDistribution(present)
		if err == nil {
			profile.Summary = summary
			profile.Distribution = dist
		}
		return profile
	}

	counts := make(map[string]int)
	for _, v := range col.Str {
		if v != "" {
			counts[v]++
		}
	}
	profile.Distinct = len(counts)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if profile.TopValue == "" || counts[k] > counts[profile.TopValue] {
			profile.TopValue = k
		}
	}
	return profile
}

// ProfileTable profiles columns in table order
func (dp *DataProfiler) ProfileTable(table *dataset.Table) []ColumnProfile {
	cols := table.Columns()
	results := make([]ColumnProfile, len(cols))
	for i, col := range cols {
		results[i] = dp.ProfileColumn(col)
	}
	return results
}
