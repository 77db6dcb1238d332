package ml

import (
	"fmt"
	"math"

	"mlpipe/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Solver names
const (
	SolverLBFGS    = "lbfgs"
	SolverNewtonCG = "newton-cg"
)

// LogisticRegression is an L2-regularized binary classifier over labels 0 and 1.
// It minimizes 0.5*||w||^2 + C * sum(logloss); the intercept is not penalized.
type LogisticRegression struct {
	C         float64   `json:"c"`
	MaxIter   int       `json:"max_iter"`
	Solver    string    `json:"solver"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	NIter     int       `json:"n_iter"`
	Status    string    `json:"status,omitempty"`
}

// NewLogisticRegression creates an unfitted classifier
func NewLogisticRegression(c float64, maxIter int, solver string) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: maxIter, Solver: solver}
}

// NFeatures is the fitted input width, 0 before Fit
func (m *LogisticRegression) NFeatures() int {
	return len(m.Coef)
}

// Fit estimates coefficients. Reaching MaxIter keeps the last iterate, like a
// convergence warning; only a missing or non-finite solution is an error.
func (m *LogisticRegression) Fit(x mat.Matrix, y []float64) error {
	rows, cols := x.Dims()
	if rows == 0 {
		return core.ErrEmptyDataset
	}
	if len(y) != rows {
		return fmt.Errorf("%d labels for %d rows", len(y), rows)
	}
	var pos, neg int
	for _, v := range y {
		switch v {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return fmt.Errorf("labels must be 0 or 1, got %v", v)
		}
	}
	if pos == 0 || neg == 0 {
		return core.ErrSingleClass
	}

	dense := mat.DenseCopyOf(x)
	obj := &logLoss{x: dense, y: y, c: m.C, rows: rows, cols: cols}

	problem := optimize.Problem{
		Func: obj.value,
		Grad: obj.grad,
		Hess: obj.hess,
	}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: 1e-4,
	}

	var method optimize.Method
	switch m.Solver {
	case SolverNewtonCG:
		method = &optimize.Newton{}
	case SolverLBFGS, "":
		method = &optimize.LBFGS{}
	default:
		return fmt.Errorf("unsupported solver %q", m.Solver)
	}

	init := make([]float64, cols+1)
	result, err := optimize.Minimize(problem, init, settings, method)
	if result == nil {
		return fmt.Errorf("%w: %v", core.ErrOptimizationFailed, err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coefficients", core.ErrOptimizationFailed)
		}
	}

	m.Coef = append([]float64(nil), result.X[:cols]...)
	m.Intercept = result.X[cols]
	m.NIter = result.Stats.MajorIterations
	m.Status = result.Status.String()
	return nil
}

// DecisionFunction returns w·x + b per row
func (m *LogisticRegression) DecisionFunction(x mat.Matrix) ([]float64, error) {
	if len(m.Coef) == 0 {
		return nil, core.ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != len(m.Coef) {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", core.ErrFeatureMismatch, len(m.Coef), cols)
	}
	w := mat.NewVecDense(cols, m.Coef)
	z := mat.NewVecDense(rows, nil)
	z.MulVec(x, w)
	out := make([]float64, rows)
	for i := range out {
		out[i] = z.AtVec(i) + m.Intercept
	}
	return out, nil
}

// PredictProba returns P(y=1) per row
func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, v := range z {
		z[i] = sigmoid(v)
	}
	return z, nil
}

// Predict returns 1 where the decision function is positive, else 0
func (m *LogisticRegression) Predict(x mat.Matrix) ([]float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, v := range z {
		if v > 0 {
			z[i] = 1
		} else {
			z[i] = 0
		}
	}
	return z, nil
}

// logLoss is the penalized objective over params = [w..., b]
type logLoss struct {
	x    *mat.Dense
	y    []float64
	c    float64
	rows int
	cols int
}

func (l *logLoss) margins(params []float64) []float64 {
	z := make([]float64, l.rows)
	for i := 0; i < l.rows; i++ {
		s := params[l.cols]
		row := l.x.RawRowView(i)
		for j, v := range row {
			s += v * params[j]
		}
		z[i] = s
	}
	return z
}

func (l *logLoss) value(params []float64) float64 {
	var reg float64
	for j := 0; j < l.cols; j++ {
		reg += params[j] * params[j]
	}
	var loss float64
	for i, z := range l.margins(params) {
		loss += softplus(z) - l.y[i]*z
	}
	return 0.5*reg + l.c*loss
}

func (l *logLoss) grad(grad, params []float64) {
	for j := range grad {
		grad[j] = 0
	}
	for i, z := range l.margins(params) {
		r := l.c * (sigmoid(z) - l.y[i])
		row := l.x.RawRowView(i)
		for j, v := range row {
			grad[j] += r * v
		}
		grad[l.cols] += r
	}
	for j := 0; j < l.cols; j++ {
		grad[j] += params[j]
	}
}

func (l *logLoss) hess(hess *mat.SymDense, params []float64) {
	n := l.cols + 1
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			hess.SetSym(a, b, 0)
		}
	}
	ext := make([]float64, n)
	for i, z := range l.margins(params) {
		p := sigmoid(z)
		d := l.c * p * (1 - p)
		copy(ext, l.x.RawRowView(i))
		ext[l.cols] = 1
		for a := 0; a < n; a++ {
			if ext[a] == 0 {
				continue
			}
			for b := a; b < n; b++ {
				hess.SetSym(a, b, hess.At(a, b)+d*ext[a]*ext[b])
			}
		}
	}
	for j := 0; j < l.cols; j++ {
		hess.SetSym(j, j, hess.At(j, j)+1)
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus is log(1 + e^z) without overflow
func softplus(z float64) float64 {
	return math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
}
