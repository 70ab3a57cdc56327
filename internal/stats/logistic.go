package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// LogisticModel is a one-predictor logistic regression
type LogisticModel struct {
	Intercept float64
	Coef      float64
}

// FitLogistic fits P(y=1|x) = sigmoid(b + w*x) by minimizing the log loss
// plus an L2 penalty of w^2/2 on the coefficient (intercept unpenalized),
// the scikit-learn default with C=1. y must contain both 0 and 1.
func FitLogistic(x, y []float64) (LogisticModel, error) {
	if len(x) != len(y) {
		return LogisticModel{}, fmt.Errorf("x and y differ in length: %d vs %d", len(x), len(y))
	}
	if len(x) == 0 {
		return LogisticModel{}, ErrEmpty
	}
	var pos int
	for _, v := range y {
		switch v {
		case 1:
			pos++
		case 0:
		default:
			return LogisticModel{}, fmt.Errorf("outcome must be 0 or 1, got %v", v)
		}
	}
	if pos == 0 || pos == len(y) {
		return LogisticModel{}, fmt.Errorf("outcome has a single class")
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			b, w := p[0], p[1]
			var loss float64
			for i := range x {
				z := b + w*x[i]
				loss += softplus(z) - y[i]*z
			}
			return loss + 0.5*w*w
		},
		Grad: func(grad, p []float64) {
			b, w := p[0], p[1]
			grad[0], grad[1] = 0, w
			for i := range x {
				r := sigmoid(b+w*x[i]) - y[i]
				grad[0] += r
				grad[1] += r * x[i]
			}
		},
	}

	result, err := optimize.Minimize(problem, []float64{0, 0}, nil, &optimize.LBFGS{})
	if err != nil {
		return LogisticModel{}, fmt.Errorf("logistic regression did not converge: %w", err)
	}
	return LogisticModel{Intercept: result.X[0], Coef: result.X[1]}, nil
}

// Predict returns P(y=1|x)
func (m LogisticModel) Predict(x float64) float64 {
	return sigmoid(m.Intercept + m.Coef*x)
}

// OddsRatio is exp(coef): the change in odds per unit of x
func (m LogisticModel) OddsRatio() float64 {
	return math.Exp(m.Coef)
}

// Standardize returns z-scores using the population standard deviation.
// A constant input maps to all zeros.
func Standardize(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	if std == 0 {
		std = 1
	}
	for i, v := range x {
		out[i] = stat.StdScore(v, mean, std)
	}
	return out
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
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
