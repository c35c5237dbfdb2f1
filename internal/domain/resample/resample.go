// Package resample time-normalizes variable-length strides to a fixed number
// of samples.
package resample

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Default resampling configuration constants.
const (
	DefaultSamples = 50
	DefaultMethod  = "cubic"

	// minCubicSamples is the smallest stride a cubic fit is well-posed for.
	minCubicSamples  = 4
	minLinearSamples = 2
)

type method struct {
	newFitter func() interp.FittablePredictor
	minLength int
}

var methods = map[string]method{
	"cubic": {
		newFitter: func() interp.FittablePredictor { return &interp.NotAKnotCubic{} },
		minLength: minCubicSamples,
	},
	"natural": {
		newFitter: func() interp.FittablePredictor { return &interp.NaturalCubic{} },
		minLength: minCubicSamples,
	},
	"akima": {
		newFitter: func() interp.FittablePredictor { return &interp.AkimaSpline{} },
		minLength: minCubicSamples,
	},
	"fritsch-butland": {
		newFitter: func() interp.FittablePredictor { return &interp.FritschButland{} },
		minLength: minCubicSamples,
	},
	"linear": {
		newFitter: func() interp.FittablePredictor { return &interp.PiecewiseLinear{} },
		minLength: minLinearSamples,
	},
}

// Methods lists the accepted interpolation method names.
func Methods() []string {
	return []string{"cubic", "natural", "akima", "fritsch-butland", "linear"}
}

// Option applies a configuration option to the Resampler.
type Option func(*Resampler)

// WithSamples sets the target sample count K.
func WithSamples(k int) Option {
	return func(r *Resampler) {
		r.samples = k
	}
}

// WithMethod selects the interpolation method by name.
func WithMethod(name string) Option {
	return func(r *Resampler) {
		if name != "" {
			r.methodName = strings.ToLower(strings.TrimSpace(name))
		}
	}
}

// WithMinLength raises the minimum accepted stride length. It never drops
// below what the method needs.
func WithMinLength(n int) Option {
	return func(r *Resampler) {
		r.minLength = n
	}
}

// Resampler maps an L-sample stride onto K samples. It holds no mutable
// state and is safe for concurrent use.
type Resampler struct {
	samples    int
	methodName string
	minLength  int
	method     method
}

// New creates a Resampler, validating the target count and method.
func New(opts ...Option) (*Resampler, error) {
	r := &Resampler{
		samples:    DefaultSamples,
		methodName: DefaultMethod,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.samples < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSamples, r.samples)
	}
	m, ok := methods[r.methodName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, r.methodName)
	}
	r.method = m
	if r.minLength < m.minLength {
		r.minLength = m.minLength
	}
	return r, nil
}

// Samples returns the target sample count K.
func (r *Resampler) Samples() int { return r.samples }

// MinLength returns the shortest stride the resampler accepts.
func (r *Resampler) MinLength() int { return r.minLength }

// Resample places the L source samples at evenly spaced knots over [0, K],
// fits the interpolant and evaluates it at K evenly spaced points over the
// same range. The output always has exactly K samples.
func (r *Resampler) Resample(values []float64) ([]float64, error) {
	l := len(values)
	if l < r.minLength {
		return nil, fmt.Errorf("%w: stride of %d samples, need at least %d", ErrInsufficientData, l, r.minLength)
	}

	span := float64(r.samples)
	xs := linspace(0, span, l)
	ys := append([]float64(nil), values...)

	fitter := r.method.newFitter()
	if err := fitter.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit %s interpolant: %w", r.methodName, err)
	}

	out := make([]float64, r.samples)
	for j, q := range linspace(0, span, r.samples) {
		out[j] = fitter.Predict(q)
	}
	return out, nil
}

// linspace returns n evenly spaced points over [lo, hi], endpoints included.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := n - 1
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(step)
	}
	return out
}
