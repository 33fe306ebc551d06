package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tsforecast/ets"
	"tsforecast/lbfgs"
	"tsforecast/numeric"
	"tsforecast/perf"
	"tsforecast/series"
	"tsforecast/tserr"
)

// ETSModel wraps the ets gradient engine and the box-constrained optimizer
// into a full Forecaster: Fit optimizes the smoothing parameters (and
// initial level/trend) by minimizing the negative log-likelihood computed
// in ets.ComputeNLLWithGradients, and Predict extrapolates the fitted
// state-space model forward.
type ETSModel struct {
	config ets.Config

	fittedConfig ets.Config
	level        float64
	trend        float64
	seasonals    []float64
	residualSD   float64
	nll          float64
	numParams    int
	fitted       bool
}

// AIC returns the Akaike information criterion of the fitted model
// (2*numParams - 2*logLikelihood, with logLikelihood = -nll), the
// information-criterion statistic AutoETS ranks candidates by.
func (e *ETSModel) AIC() float64 { return 2*float64(e.numParams) + 2*e.nll }

// NewETSModel constructs an explicit ETS model for the given
// error/trend/season combination and season length m (m is ignored when
// season is ets.SeasonNone).
func NewETSModel(errorType ets.ErrorType, trend ets.TrendType, season ets.SeasonType, m int) *ETSModel {
	config := ets.Config{Error: errorType, Trend: trend, Season: season, M: m}
	if season == ets.SeasonNone {
		config.M = 1
	}
	return &ETSModel{config: config}
}

func (e *ETSModel) Name() string { return "ETS" }

func minSeriesLengthFor(config ets.Config) int {
	if config.HasSeason() {
		return 2 * config.M
	}
	return 3
}

func (e *ETSModel) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	minLen := minSeriesLengthFor(e.config)
	if len(values) < minLen {
		return fmt.Errorf("%w: ETS(%v) requires at least %d observations, got %d", tserr.ErrInsufficientData, e.config, minLen, len(values))
	}
	if diag := numeric.Summarize(values); math.IsNaN(diag.Sum) || math.IsInf(diag.MaxAbs, 0) {
		return fmt.Errorf("%w: ETS(%v) input series contains NaN or infinite values", tserr.ErrInvalidInput, e.config)
	}

	hasTrend := e.config.HasTrend()
	hasSeason := e.config.HasSeason()

	// Parameter vector layout: [alpha, beta?, gamma?, phi?, level0, trend0?, seasonal0...?]
	dim := 2
	if hasTrend {
		dim++
	}
	if e.config.IsDampedTrend() {
		dim++
	}
	if hasSeason {
		dim += 1 + e.config.M
	}

	x0 := make([]float64, dim)
	lower := make([]float64, dim)
	upper := make([]float64, dim)

	idx := 0
	x0[idx], lower[idx], upper[idx] = 0.3, 1e-4, 1.0
	idx++
	if hasTrend {
		x0[idx], lower[idx], upper[idx] = 0.1, 0.0, 1.0
		idx++
	}
	if hasSeason {
		x0[idx], lower[idx], upper[idx] = 0.1, 0.0, 1.0
		idx++
	}
	if e.config.IsDampedTrend() {
		x0[idx], lower[idx], upper[idx] = 0.9, 0.8, 0.995
		idx++
	}
	x0[idx], lower[idx], upper[idx] = values[0], -math.MaxFloat64, math.MaxFloat64
	idx++
	if hasTrend {
		x0[idx], lower[idx], upper[idx] = values[1]-values[0], -math.MaxFloat64, math.MaxFloat64
		idx++
	}
	if hasSeason {
		for i := 0; i < e.config.M; i++ {
			if e.config.Season == ets.SeasonAdditive {
				x0[idx], lower[idx], upper[idx] = 0.0, -math.MaxFloat64, math.MaxFloat64
			} else {
				x0[idx], lower[idx], upper[idx] = 1.0, 0.1, 10.0
			}
			idx++
		}
	}

	unpack := func(x []float64) (ets.Config, float64, float64, []float64) {
		config := e.config
		i := 0
		config.Alpha = x[i]
		i++
		if hasTrend {
			beta := x[i]
			config.Beta = &beta
			i++
		}
		if hasSeason {
			gamma := x[i]
			config.Gamma = &gamma
			i++
		}
		if config.IsDampedTrend() {
			config.Phi = x[i]
			i++
		} else if hasTrend {
			config.Phi = 1.0
		}
		level0 := x[i]
		i++
		trend0 := 0.0
		if hasTrend {
			trend0 = x[i]
			i++
		}
		var seasonal0 []float64
		if hasSeason {
			seasonal0 = append([]float64(nil), x[i:i+e.config.M]...)
		}
		return config, level0, trend0, seasonal0
	}

	objective := func(x []float64) (float64, []float64) {
		config, level0, trend0, seasonal0 := unpack(x)
		nll, grad, _ := ets.ComputeNLLWithGradients(config, values, level0, trend0, seasonal0)
		if math.IsInf(nll, 1) || math.IsNaN(nll) {
			return math.Inf(1), make([]float64, len(x))
		}

		gradX := make([]float64, len(x))
		i := 0
		gradX[i] = grad.DAlpha
		i++
		if hasTrend {
			gradX[i] = grad.DBeta
			i++
		}
		if hasSeason {
			gradX[i] = grad.DGamma
			i++
		}
		if config.IsDampedTrend() {
			gradX[i] = grad.DPhi
			i++
		}
		gradX[i] = grad.DLevel
		i++
		if hasTrend {
			gradX[i] = grad.DTrend
			i++
		}
		// Seasonal initial-state gradients are not tracked analytically;
		// treat them as fixed (zero gradient) and let alpha/beta/gamma and
		// level/trend absorb the optimization.
		return nll, gradX
	}

	opts := lbfgs.DefaultOptions()
	var result lbfgs.Result
	trackErr := perf.Track("ETSModel", "Fit", func() error {
		var minimizeErr error
		result, minimizeErr = lbfgs.Minimize(objective, x0, lower, upper, opts)
		return minimizeErr
	})
	if trackErr != nil {
		return fmt.Errorf("%w: ETS optimization failed: %v", tserr.ErrNotConverged, trackErr)
	}

	config, level0, trend0, seasonal0 := unpack(result.X)
	forward := ets.RunForward(config, values, level0, trend0, seasonal0)

	e.fittedConfig = config
	e.level = forward.Levels[len(forward.Levels)-1]
	e.trend = forward.Trends[len(forward.Trends)-1]
	if hasSeason {
		e.seasonals = forward.SeasonalStates[len(forward.SeasonalStates)-1]
	}
	e.nll = result.Fx
	e.numParams = dim
	e.residualSD = residualStdDev(values, forward.Fitted)
	e.fitted = true
	return nil
}

// residualStdDev is the sample standard deviation of the in-sample
// one-step residuals, used to scale the Normal prediction interval.
func residualStdDev(actual, fitted []float64) float64 {
	n := len(actual)
	if n == 0 || n != len(fitted) {
		return 0
	}
	var sumSq float64
	for i := range actual {
		resid := actual[i] - fitted[i]
		sumSq += resid * resid
	}
	if n <= 1 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func (e *ETSModel) Predict(horizon int) (series.Forecast, error) {
	if !e.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	if horizon < 1 {
		return series.Forecast{}, fmt.Errorf("%w: horizon must be >= 1", tserr.ErrInvalidInput)
	}

	config := e.fittedConfig
	point := make([]float64, horizon)
	level := e.level
	trend := e.trend
	hasSeason := config.HasSeason()

	for h := 1; h <= horizon; h++ {
		base := level
		switch config.Trend {
		case ets.TrendAdditive:
			base += float64(h) * trend
		case ets.TrendMultiplicative:
			base *= math.Pow(trend, float64(h))
		case ets.TrendDampedAdditive:
			dampSum := 0.0
			phiPow := config.Phi
			for j := 0; j < h; j++ {
				dampSum += phiPow
				phiPow *= config.Phi
			}
			base += dampSum * trend
		case ets.TrendDampedMultiplicative:
			dampSum := 0.0
			phiPow := config.Phi
			for j := 0; j < h; j++ {
				dampSum += phiPow
				phiPow *= config.Phi
			}
			base *= math.Pow(trend, dampSum)
		}

		value := base
		if hasSeason && len(e.seasonals) > 0 {
			seasIdx := (h - 1) % len(e.seasonals)
			if config.Season == ets.SeasonAdditive {
				value = base + e.seasonals[seasIdx]
			} else {
				value = base * e.seasonals[seasIdx]
			}
		}
		point[h-1] = value
	}

	forecast := series.Forecast{Point: point, ModelName: e.Name()}
	if e.residualSD > 0 {
		forecast.Lower, forecast.Upper = normalPredictionInterval(point, e.residualSD, 0.95)
	}
	return forecast, nil
}

// normalPredictionInterval builds a symmetric prediction band around point
// assuming Normal(0, residualSD) one-step errors whose variance grows
// linearly with the step count, using the two-sided z critical value for
// confidence level (e.g. 0.95) from gonum's Normal quantile function.
func normalPredictionInterval(point []float64, residualSD, confidence float64) (lower, upper []float64) {
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)
	lower = make([]float64, len(point))
	upper = make([]float64, len(point))
	for h := range point {
		width := z * residualSD * math.Sqrt(float64(h+1))
		lower[h] = point[h] - width
		upper[h] = point[h] + width
	}
	return lower, upper
}

// SES is simple exponential smoothing: ETS(A,N,N).
func NewSES() *ETSModel { return NewETSModel(ets.ErrorAdditive, ets.TrendNone, ets.SeasonNone, 1) }

// Holt is double exponential smoothing with an additive trend: ETS(A,A,N).
func NewHolt() *ETSModel { return NewETSModel(ets.ErrorAdditive, ets.TrendAdditive, ets.SeasonNone, 1) }

// HoltWinters is Holt-Winters seasonal smoothing: ETS(A,A,A) at season
// length m.
func NewHoltWinters(m int) *ETSModel {
	return NewETSModel(ets.ErrorAdditive, ets.TrendAdditive, ets.SeasonAdditive, m)
}

// SeasonalES is exponential smoothing with an additive seasonal component
// and no trend: ETS(A,N,A).
func NewSeasonalES(m int) *ETSModel {
	return NewETSModel(ets.ErrorAdditive, ets.TrendNone, ets.SeasonAdditive, m)
}

// candidateConfigs enumerates the (error, trend, season) combinations
// AutoETS searches over — the additive-error subset is used for numerical
// stability, matching common AutoETS implementations' default restriction.
func candidateConfigs(m int, seasonal bool) []ets.Config {
	trends := []ets.TrendType{ets.TrendNone, ets.TrendAdditive, ets.TrendDampedAdditive}
	var seasons []ets.SeasonType
	if seasonal && m > 1 {
		seasons = []ets.SeasonType{ets.SeasonNone, ets.SeasonAdditive}
	} else {
		seasons = []ets.SeasonType{ets.SeasonNone}
	}

	var configs []ets.Config
	for _, trend := range trends {
		for _, season := range seasons {
			seasonM := 1
			if season != ets.SeasonNone {
				seasonM = m
			}
			configs = append(configs, ets.Config{Error: ets.ErrorAdditive, Trend: trend, Season: season, M: seasonM})
		}
	}
	return configs
}

// AutoETS selects the (error, trend, season) combination with the lowest
// Akaike information criterion among the configurations candidateConfigs
// enumerates.
type AutoETS struct {
	m        int
	seasonal bool
	best     *ETSModel
}

func NewAutoETS(seasonLength int, seasonal bool) *AutoETS {
	return &AutoETS{m: seasonLength, seasonal: seasonal}
}

func (a *AutoETS) Name() string { return "AutoETS" }

func (a *AutoETS) Fit(ts *series.TimeSeries) error {
	var best *ETSModel
	bestAIC := math.Inf(1)

	for _, config := range candidateConfigs(a.m, a.seasonal) {
		candidate := &ETSModel{config: config}
		if err := candidate.Fit(ts); err != nil {
			continue
		}
		if aic := candidate.AIC(); aic < bestAIC {
			bestAIC = aic
			best = candidate
		}
	}

	if best == nil {
		return fmt.Errorf("%w: AutoETS found no admissible model for this series", tserr.ErrNotConverged)
	}
	a.best = best
	return nil
}

func (a *AutoETS) Predict(horizon int) (series.Forecast, error) {
	if a.best == nil {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	forecast, err := a.best.Predict(horizon)
	forecast.ModelName = a.Name()
	return forecast, err
}
