package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pricedash/domain/housing"
	"pricedash/internal/dataset"
)

// ModelVersion is reported by every model endpoint.
const ModelVersion = "1.0.0"

const (
	modelType = "RidgeRegression"
	ridge     = 1.0
	// neighborhood effects are shrunk towards zero by this many pseudo-sales
	shrinkage = 5.0
)

// Model is a ridge regression over standardised numeric features plus a
// per-neighborhood offset fitted on the residuals.
type Model struct {
	features  []string
	means     []float64
	stds      []float64
	intercept float64
	coef      []float64
	hood      map[string]float64
	rows      int
}

// Fit trains a model on every numeric feature column the dataset carries.
func Fit(ds *dataset.Dataset) (*Model, error) {
	var features []string
	for _, name := range housing.DefaultFeatureNames {
		if ds.HasColumn(name) {
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("dataset has none of the model features %v", housing.DefaultFeatureNames)
	}
	return fit(ds, features, allRows(ds.Len()))
}

func fit(ds *dataset.Dataset, features []string, rows []int) (*Model, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	k := len(features)
	m := &Model{
		features: features,
		means:    make([]float64, k),
		stds:     make([]float64, k),
		coef:     make([]float64, k),
		hood:     make(map[string]float64),
		rows:     len(rows),
	}

	cols := make([][]float64, k)
	for j, name := range features {
		col := ds.Numeric(name)
		cols[j] = col
		var present []float64
		for _, i := range rows {
			if !math.IsNaN(col[i]) {
				present = append(present, col[i])
			}
		}
		if len(present) > 1 {
			m.means[j], m.stds[j] = stat.MeanStdDev(present, nil)
		}
		if m.stds[j] == 0 || math.IsNaN(m.stds[j]) {
			m.stds[j] = 1
		}
	}

	prices := ds.Prices()
	y := make([]float64, len(rows))
	z := mat.NewDense(len(rows), k, nil)
	for r, i := range rows {
		y[r] = prices[i]
		for j := range features {
			z.Set(r, j, m.standardise(j, cols[j][i]))
		}
	}
	m.intercept = stat.Mean(y, nil)

	centred := make([]float64, len(y))
	for i, v := range y {
		centred[i] = v - m.intercept
	}

	var gram mat.Dense
	gram.Mul(z.T(), z)
	for j := 0; j < k; j++ {
		gram.Set(j, j, gram.At(j, j)+ridge)
	}
	var rhs mat.VecDense
	rhs.MulVec(z.T(), mat.NewVecDense(len(centred), centred))

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("solve normal equations: %w", err)
		}
	}
	for j := range m.coef {
		m.coef[j] = beta.AtVec(j)
	}

	hoods := ds.Neighborhoods()
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for r, i := range rows {
		fitted := m.intercept + mat.Dot(z.RowView(r), &beta)
		sums[hoods[i]] += y[r] - fitted
		counts[hoods[i]]++
	}
	for name, sum := range sums {
		m.hood[name] = sum / (counts[name] + shrinkage)
	}
	return m, nil
}

func (m *Model) standardise(j int, v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return (v - m.means[j]) / m.stds[j]
}

// Predict prices one property. Missing or non-numeric features fall back to
// the training mean and unknown neighborhoods get no offset.
func (m *Model) Predict(f housing.Features) float64 {
	price := m.intercept
	for j, name := range m.features {
		v, ok := toFloat(f[name])
		if !ok {
			continue
		}
		price += m.coef[j] * m.standardise(j, v)
	}
	if hood, ok := f["Neighborhood"].(string); ok {
		price += m.hood[hood]
	}
	return math.Max(price, 0)
}

func (m *Model) predictRow(ds *dataset.Dataset, i int) float64 {
	f := housing.Features{}
	for _, name := range m.features {
		if v, ok := ds.Rows[i][name]; ok {
			f[name] = v
		}
	}
	f["Neighborhood"] = ds.Rows[i][dataset.NeighborhoodColumn]
	return m.Predict(f)
}

// Importance returns the share of each standardised coefficient magnitude,
// aligned with FeatureNames.
func (m *Model) Importance() []float64 {
	total := 0.0
	for _, c := range m.coef {
		total += math.Abs(c)
	}
	out := make([]float64, len(m.coef))
	for j, c := range m.coef {
		if total > 0 {
			out[j] = math.Abs(c) / total
		}
	}
	return out
}

// FeatureNames lists the numeric features in coefficient order.
func (m *Model) FeatureNames() []string {
	return append([]string(nil), m.features...)
}

// Info describes the model the way /model/info reports it.
func (m *Model) Info() housing.ModelInfo {
	return housing.ModelInfo{
		ModelType:    modelType,
		ModelVersion: ModelVersion,
		Parameters: map[string]any{
			"alpha":                ridge,
			"neighborhood_effects": len(m.hood),
			"neighborhood_shrink":  shrinkage,
			"training_rows":        m.rows,
		},
		FeatureImportance: m.Importance(),
		FeatureNames:      m.FeatureNames(),
	}
}

// Compare fits the candidate models on four fifths of the sales and scores
// them on the remaining fifth.
func Compare(ds *dataset.Dataset) ([]housing.ModelComparison, error) {
	var train, test []int
	for i := 0; i < ds.Len(); i++ {
		if i%5 == 4 {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	if len(test) == 0 {
		return nil, fmt.Errorf("need at least 5 sales to compare models")
	}
	prices := ds.Prices()
	actual := pick(prices, test)

	var out []housing.ModelComparison

	full, err := Fit(subset(ds, train))
	if err != nil {
		return nil, err
	}
	out = append(out, score("Ridge + neighborhood", actual, predictEach(test, func(i int) float64 {
		return full.predictRow(ds, i)
	})))

	if ds.HasColumn("GrLivArea") {
		area := ds.Numeric("GrLivArea")
		var xs, ys []float64
		for _, i := range train {
			if !math.IsNaN(area[i]) {
				xs = append(xs, area[i])
				ys = append(ys, prices[i])
			}
		}
		if len(xs) > 1 {
			alpha, beta := stat.LinearRegression(xs, ys, nil, false)
			mean := stat.Mean(ys, nil)
			out = append(out, score("Living area only", actual, predictEach(test, func(i int) float64 {
				if math.IsNaN(area[i]) {
					return mean
				}
				return alpha + beta*area[i]
			})))
		}
	}

	hoods := ds.Neighborhoods()
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, i := range train {
		sums[hoods[i]] += prices[i]
		counts[hoods[i]]++
	}
	overall := stat.Mean(pick(prices, train), nil)
	out = append(out, score("Neighborhood mean", actual, predictEach(test, func(i int) float64 {
		if n := counts[hoods[i]]; n > 0 {
			return sums[hoods[i]] / n
		}
		return overall
	})))

	sort.SliceStable(out, func(i, j int) bool { return out[i].R2 > out[j].R2 })
	return out, nil
}

func score(name string, actual, predicted []float64) housing.ModelComparison {
	var se, ae float64
	for i := range actual {
		d := predicted[i] - actual[i]
		se += d * d
		ae += math.Abs(d)
	}
	n := float64(len(actual))
	return housing.ModelComparison{
		Model: name,
		R2:    stat.RSquaredFrom(predicted, actual, nil),
		RMSE:  math.Sqrt(se / n),
		MAE:   ae / n,
	}
}

func predictEach(rows []int, fn func(int) float64) []float64 {
	out := make([]float64, len(rows))
	for k, i := range rows {
		out[k] = fn(i)
	}
	return out
}

func pick(values []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for k, i := range rows {
		out[k] = values[i]
	}
	return out
}

func subset(ds *dataset.Dataset, rows []int) *dataset.Dataset {
	out := &dataset.Dataset{Headers: ds.Headers}
	for _, i := range rows {
		out.Rows = append(out.Rows, ds.Rows[i])
	}
	return out
}

func allRows(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
