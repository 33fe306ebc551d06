package streaming

import (
	"fmt"

	"tsforecast/decompose"
	"tsforecast/forecast"
	"tsforecast/series"
	"tsforecast/stats"
	"tsforecast/tserr"
)

// FinalizeConfig configures the finalize-time kernel dispatch: which
// drivers to run over each group's dense-filled series and how to pack
// their output into emitted rows (spec §4.5: "Both drivers feed the
// streaming operator: accumulate per group, run the kernel at finalize,
// emit a row per original timestamp carrying the augmented columns"; the
// Stats and DataQuality aggregates are the additional finalize-time
// drivers sharing the same protocol).
type FinalizeConfig struct {
	Freq Frequency

	// SeasonalPeriods, when non-empty, runs decompose.MSTL over each
	// group's filled series. A group too short for the largest period is
	// skipped (not failed) and its trend/seasonal/residual columns stay
	// absent.
	SeasonalPeriods []int
	MSTLIterations  int

	// RunChangepoint enables decompose.Detect over each group's filled
	// series.
	RunChangepoint    bool
	ChangepointConfig decompose.ChangepointConfig
	RunStats          bool
	RunQuality        bool

	// NewModel, when non-nil, fits a fresh Forecaster per group and
	// produces Horizon steps of out-of-sample forecast rows appended after
	// the group's dense grid. A group a model can't fit is skipped, not
	// failed.
	NewModel func() forecast.Forecaster
	Horizon  int

	BatchSize int // 0 means DefaultBatchSize
}

// AugmentedColumns is the set of per-row columns a finalize kernel can add
// on top of a group's original passthrough columns. Every field is a zero
// value when its driver didn't run or didn't cover this row; Has* flags
// disambiguate a real zero from "not computed".
type AugmentedColumns struct {
	HasTrend    bool
	Trend       float64
	HasSeasonal bool
	Seasonal    map[int]float64
	HasResidual bool
	Residual    float64

	HasChangepoint         bool
	IsChangepoint          bool
	ChangepointProbability float64

	HasGroupStats   bool
	GroupStats      stats.Stats
	HasGroupQuality bool
	GroupQuality    stats.DataQuality

	HasForecast   bool
	ForecastPoint float64
	ForecastLower float64
	ForecastUpper float64
}

// Finalize drives every configured kernel across each group accumulated in
// registry, and returns an Emitter ready to be drained in
// FinalizeConfig.BatchSize (or DefaultBatchSize) chunks. A failure in one
// group's kernel (too little data, a non-converging fit) skips that
// group's augmentation rather than aborting the whole finalize pass,
// mirroring eval.Evaluate's per-fold failure isolation.
func Finalize(registry *Registry, config FinalizeConfig) (*Emitter, error) {
	batchSize := config.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	emitter, err := NewEmitter(batchSize)
	if err != nil {
		return nil, err
	}

	for _, buffer := range registry.Groups() {
		rows, err := finalizeGroup(buffer, config)
		if err != nil {
			continue
		}
		emitter.Push(rows)
	}

	return emitter, nil
}

func finalizeGroup(buffer *GroupBuffer, config FinalizeConfig) ([]Row, error) {
	points := buffer.Points()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: group %q has no valued observations", tserr.ErrInsufficientData, buffer.GroupKeyValue)
	}

	grid, values, hasValue, err := FillGaps(points, config.Freq)
	if err != nil {
		return nil, err
	}
	filled := FillForward(values, hasValue)

	augmented := make([]AugmentedColumns, len(grid))

	if len(config.SeasonalPeriods) > 0 {
		if mstl, mstlErr := decompose.MSTL(filled, config.SeasonalPeriods, config.MSTLIterations); mstlErr == nil {
			for i := range augmented {
				augmented[i].HasTrend = true
				augmented[i].Trend = mstl.Trend[i]
				augmented[i].HasSeasonal = true
				augmented[i].Seasonal = seasonalAtIndex(mstl.Seasonals, i)
				augmented[i].HasResidual = true
				augmented[i].Residual = mstl.Residual[i]
			}
		}
	}

	if config.RunChangepoint {
		cfg := config.ChangepointConfig
		if cfg.HazardRate == 0 {
			cfg = decompose.DefaultChangepointConfig()
		}
		if flags, probs, cpErr := decompose.Detect(filled, cfg); cpErr == nil {
			for i := range augmented {
				augmented[i].HasChangepoint = true
				augmented[i].IsChangepoint = flags[i]
				augmented[i].ChangepointProbability = probs[i]
			}
		}
	}

	if config.RunStats {
		if groupStats, statsErr := stats.Compute(filled); statsErr == nil {
			for i := range augmented {
				augmented[i].HasGroupStats = true
				augmented[i].GroupStats = groupStats
			}
		}
	}

	if config.RunQuality {
		quality := stats.ComputeQuality(filled, hasValue)
		for i := range augmented {
			augmented[i].HasGroupQuality = true
			augmented[i].GroupQuality = quality
		}
	}

	var forecastRows []Row
	if config.NewModel != nil && config.Horizon > 0 {
		if ts, tsErr := series.NewFromValues(filled); tsErr == nil {
			model := config.NewModel()
			if fitErr := model.Fit(ts); fitErr == nil {
				if fc, predictErr := model.Predict(config.Horizon); predictErr == nil {
					step := config.Freq.IntegerStep
					if step == 0 {
						step = 1
					}
					lastIndex := grid[len(grid)-1]
					for h, point := range fc.Point {
						row := AugmentedColumns{HasForecast: true, ForecastPoint: point}
						if fc.Lower != nil && fc.Upper != nil {
							row.ForecastLower = fc.Lower[h]
							row.ForecastUpper = fc.Upper[h]
						}
						forecastRows = append(forecastRows, Row{
							GroupKeyValue: buffer.GroupKeyValue,
							Timestamp:     lastIndex + step*int64(h+1),
							Value:         point,
							OtherColumns:  []any{row},
						})
					}
				}
			}
		}
	}

	rows := make([]Row, 0, len(buffer.Timestamps)+len(forecastRows))
	gridPos := make(map[int64]int, len(grid))
	for i, idx := range grid {
		gridPos[idx] = i
	}
	for i, ts := range buffer.Timestamps {
		pos, ok := gridPos[ts]
		if !ok {
			continue
		}
		others := append(append([]any(nil), buffer.OtherColumns[i]...), augmented[pos])
		rows = append(rows, Row{
			GroupKeyValue: buffer.GroupKeyValue,
			Timestamp:     ts,
			Value:         filled[pos],
			OtherColumns:  others,
		})
	}
	rows = append(rows, forecastRows...)

	return rows, nil
}

func seasonalAtIndex(seasonals map[int][]float64, i int) map[int]float64 {
	out := make(map[int]float64, len(seasonals))
	for period, values := range seasonals {
		out[period] = values[i]
	}
	return out
}
