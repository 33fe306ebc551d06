package forecast

import (
	"fmt"

	"tsforecast/arima"
	"tsforecast/ets"
	"tsforecast/tserr"
)

// paramInt and paramFloat read an optional parameter out of the factory's
// params map, falling back to a default when absent or of the wrong type.
func paramInt(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

// periodsParam reads a "periods" []int parameter, defaulting to a single
// period m when absent.
func periodsParam(params map[string]any, m int) []int {
	if v, ok := params["periods"]; ok {
		if periods, ok := v.([]int); ok && len(periods) > 0 {
			return periods
		}
	}
	return []int{m}
}

func paramBool(params map[string]any, key string, fallback bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// New constructs a Forecaster by name, dispatching the same string-keyed
// model catalog as original_source/src/model_factory.cpp's CreateModel.
// params supplies per-model configuration (e.g. "season_length", "window");
// unrecognized or absent keys fall back to sensible defaults.
func New(modelName string, params map[string]any) (Forecaster, error) {
	m := paramInt(params, "season_length", 1)

	switch modelName {
	case "Naive":
		return NewNaive(), nil
	case "SeasonalNaive":
		return NewSeasonalNaive(m), nil
	case "RandomWalkWithDrift":
		return NewRandomWalkWithDrift(), nil
	case "SMA":
		return NewSMA(paramInt(params, "window", 3)), nil
	case "SeasonalWindowAverage":
		return NewSeasonalWindowAverage(m, paramInt(params, "window_cycles", 2)), nil
	case "SES":
		return NewSES(), nil
	case "SESOptimized":
		return NewSES(), nil
	case "Holt":
		return NewHolt(), nil
	case "HoltWinters":
		return NewHoltWinters(m), nil
	case "SeasonalES":
		return NewSeasonalES(m), nil
	case "SeasonalESOptimized":
		return NewSeasonalES(m), nil
	case "Theta":
		return NewTheta(), nil
	case "OptimizedTheta":
		return NewTheta(), nil
	case "DynamicTheta":
		return NewDynamicTheta(), nil
	case "DynamicOptimizedTheta":
		return NewDynamicTheta(), nil
	case "ETS":
		errorType := ets.ErrorAdditive
		if paramBool(params, "multiplicative_error", false) {
			errorType = ets.ErrorMultiplicative
		}
		trend := ets.TrendType(paramInt(params, "trend", int(ets.TrendNone)))
		season := ets.SeasonType(paramInt(params, "season", int(ets.SeasonNone)))
		return NewETSModel(errorType, trend, season, m), nil
	case "AutoETS":
		return NewAutoETS(m, m > 1), nil
	case "CrostonClassic":
		return NewCrostonClassic(), nil
	case "CrostonOptimized":
		return NewCrostonOptimized(), nil
	case "CrostonSBA":
		return NewCrostonSBA(), nil
	case "ADIDA":
		return NewADIDA(), nil
	case "IMAPA":
		return NewIMAPA(), nil
	case "TSB":
		return NewTSB(paramFloat(params, "alpha_d", 0.1), paramFloat(params, "alpha_p", 0.1)), nil
	case "ARIMA":
		order := arima.Order{
			P: paramInt(params, "p", 1),
			D: paramInt(params, "d", 0),
			Q: paramInt(params, "q", 0),
		}
		return arima.New(order), nil
	case "AutoARIMA":
		return arima.NewAutoARIMA(
			paramInt(params, "max_p", 3),
			paramInt(params, "max_d", 1),
			paramInt(params, "max_q", 3),
		), nil
	case "MSTL":
		return NewMSTLModel(periodsParam(params, m)), nil
	case "AutoMSTL":
		return NewAutoMSTLModel(m), nil
	case "MFLES":
		return NewMFLESModel(periodsParam(params, m)), nil
	case "AutoMFLES":
		return NewAutoMFLESModel(m), nil
	case "TBATS":
		return NewTBATSModel(periodsParam(params, m)), nil
	case "AutoTBATS":
		return NewAutoTBATSModel(m), nil
	default:
		return nil, fmt.Errorf("%w: unknown model name %q", tserr.ErrInvalidInput, modelName)
	}
}
