package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"mlpipe/domain/dataset"
)

// Class labels of the synthetic personality table
const (
	LabelIntrovert = "Introvert"
	LabelExtrovert = "Extrovert"
)

// PersonalityGeneratorConfig configures the synthetic personality data generator
type PersonalityGeneratorConfig struct {
	Rows        int     `json:"rows"`
	Seed        int64   `json:"seed"`
	MissingRate float64 `json:"missing_rate"` // per feature cell
	WithID      bool    `json:"with_id"`      // add a Mongo-style _id column
}

// DefaultPersonalityConfig returns a 100-row table with a few gaps
func DefaultPersonalityConfig() PersonalityGeneratorConfig {
	return PersonalityGeneratorConfig{
		Rows:        100,
		Seed:        42,
		MissingRate: 0.03,
		WithID:      true,
	}
}

// PersonalityDataGenerator produces tables shaped like the personality dataset.
// Rows alternate between introverts and extroverts so classes are balanced.
type PersonalityDataGenerator struct {
	config PersonalityGeneratorConfig
	rng    *rand.Rand
}

// NewPersonalityDataGenerator creates a new generator
func NewPersonalityDataGenerator(config PersonalityGeneratorConfig) *PersonalityDataGenerator {
	return &PersonalityDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. Row 0 carries an extreme friends-circle value so
// outlier capping has something to clip.
func (g *PersonalityDataGenerator) Generate() *dataset.Table {
	n := g.config.Rows
	ids := make([]string, n)
	alone := make([]float64, n)
	fear := make([]string, n)
	social := make([]float64, n)
	outside := make([]float64, n)
	drained := make([]string, n)
	friends := make([]float64, n)
	posts := make([]float64, n)
	labels := make([]string, n)

	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("%024x", i+1)
		if i%2 == 0 {
			labels[i] = LabelIntrovert
			alone[i] = g.uniform(4, 11)
			social[i] = g.uniform(0, 4)
			outside[i] = g.uniform(0, 3)
			friends[i] = g.uniform(0, 6)
			posts[i] = g.uniform(0, 3)
			fear[i] = g.yesNo(0.85)
			drained[i] = g.yesNo(0.85)
		} else {
			labels[i] = LabelExtrovert
			alone[i] = g.uniform(0, 4)
			social[i] = g.uniform(4, 10)
			outside[i] = g.uniform(3, 7)
			friends[i] = g.uniform(6, 15)
			posts[i] = g.uniform(3, 10)
			fear[i] = g.yesNo(0.15)
			drained[i] = g.yesNo(0.15)
		}
	}
	if n > 0 {
		friends[0] = 60
	}

	for _, col := range [][]float64{alone, social, outside, friends, posts} {
		g.punchNumeric(col)
	}
	g.punchCategorical(fear)
	g.punchCategorical(drained)

	cols := []*dataset.Column{
		dataset.NewNumericColumn("Time_spent_Alone", alone),
		dataset.NewCategoricalColumn("Stage_fear", fear),
		dataset.NewNumericColumn("Social_event_attendance", social),
		dataset.NewNumericColumn("Going_outside", outside),
		dataset.NewCategoricalColumn("Drained_after_socializing", drained),
		dataset.NewNumericColumn("Friends_circle_size", friends),
		dataset.NewNumericColumn("Post_frequency", posts),
		dataset.NewCategoricalColumn("Personality", labels),
	}
	if g.config.WithID {
		cols = append([]*dataset.Column{dataset.NewCategoricalColumn("_id", ids)}, cols...)
	}

	table, err := dataset.FromColumns(cols...)
	if err != nil {
		// all columns are built with n rows
		panic(err)
	}
	return table
}

func (g *PersonalityDataGenerator) uniform(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))*10) / 10
}

func (g *PersonalityDataGenerator) yesNo(pYes float64) string {
	if g.rng.Float64() < pYes {
		return "Yes"
	}
	return "No"
}

// Row 0 is never punched so the outlier survives
func (g *PersonalityDataGenerator) punchNumeric(col []float64) {
	for i := 1; i < len(col); i++ {
		if g.rng.Float64() < g.config.MissingRate {
			col[i] = math.NaN()
		}
	}
}

func (g *PersonalityDataGenerator) punchCategorical(col []string) {
	for i := 1; i < len(col); i++ {
		if g.rng.Float64() < g.config.MissingRate {
			col[i] = ""
		}
	}
}
