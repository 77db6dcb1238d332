package profiling

import (
	"mlpipe/internal/ml"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution computes summary and shape markers over non-missing values
func (da *DistributionAnalyzer) AnalyzeDistribution(data []float64) (*SummaryMarkers, *DistributionMarkers, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, nil, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, nil, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return nil, nil, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return nil, nil, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return nil, nil, err
	}

	// Quartiles use the same interpolation as outlier capping
	q, err := ml.Quantiles(data, 0.25, 0.75)
	if err != nil {
		return nil, nil, err
	}

	summary := &SummaryMarkers{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Q25:    q[0],
		Median: median,
		Q75:    q[1],
		Max:    max,
	}

	dist := &DistributionMarkers{Outliers: detectOutliers(data, q[0], q[1])}
	if stdDev > 0 && len(data) >= 4 {
		dist.Skewness = stat.Skew(data, nil)
		dist.ExcessKurtosis = stat.ExKurtosis(data, nil)
		dist.NormalityP = jarqueBeraP(len(data), dist.Skewness, dist.ExcessKurtosis)
		dist.IsNormal = dist.NormalityP > normalityAlpha
	}

	return summary, dist, nil
}

const normalityAlpha = 0.05

// jarqueBeraP returns the p-value of the Jarque-Bera statistic, chi-squared with 2 degrees of freedom
func jarqueBeraP(n int, skew, exKurt float64) float64 {
	jb := float64(n) / 6 * (skew*skew + exKurt*exKurt/4)
	return distuv.ChiSquared{K: 2}.Survival(jb)
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
