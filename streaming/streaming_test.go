package streaming

import (
	"errors"
	"math"
	"testing"

	"tsforecast/tserr"
)

func TestParseFrequencyStringRecognizesGrammar(t *testing.T) {
	cases := map[string]int64{"1d": 24 * 3600, "1H": 3600, "1w": 7 * 24 * 3600, "30min": 1800}
	for input, expected := range cases {
		freq, err := ParseFrequencyString(input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if freq.Seconds != expected {
			t.Fatalf("%q: expected %d seconds, got %d", input, expected, freq.Seconds)
		}
	}
}

func TestParseFrequencyStringRejectsUnknown(t *testing.T) {
	if _, err := ParseFrequencyString("bogus"); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateCompatibilityRejectsMismatch(t *testing.T) {
	intFreq, _ := ParseIntegerFrequency(1)
	if err := ValidateCompatibility(false, intFreq); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for timestamp series with integer frequency, got %v", err)
	}
	strFreq, _ := ParseFrequencyString("1d")
	if err := ValidateCompatibility(true, strFreq); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for integer series with string frequency, got %v", err)
	}
}

// TestFillGapsInsertsMissingIndices covers spec E1.
func TestFillGapsInsertsMissingIndices(t *testing.T) {
	points := []Point{{Index: 0, Value: 1}, {Index: 2, Value: 3}, {Index: 5, Value: 6}}
	freq, _ := ParseIntegerFrequency(1)

	grid, values, hasValue, err := FillGaps(points, freq)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 6 {
		t.Fatalf("expected grid of length 6 (0..5), got %d", len(grid))
	}
	wantHas := []bool{true, false, true, false, false, true}
	for i, want := range wantHas {
		if hasValue[i] != want {
			t.Fatalf("index %d: expected hasValue=%v, got %v", grid[i], want, hasValue[i])
		}
	}
	if values[0] != 1 || values[2] != 3 || values[5] != 6 {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestFillForwardCarriesLastObserved(t *testing.T) {
	values := []float64{1, 0, 0, 3, 0}
	hasValue := []bool{true, false, false, true, false}
	filled := FillForward(values, hasValue)
	expected := []float64{1, 1, 1, 3, 3}
	for i, want := range expected {
		if filled[i] != want {
			t.Fatalf("index %d: expected %v, got %v", i, want, filled[i])
		}
	}
}

func TestFillForwardLeavesLeadingGapUnfilled(t *testing.T) {
	values := []float64{0, 2}
	hasValue := []bool{false, true}
	filled := FillForward(values, hasValue)
	if filled[0] != 0 {
		t.Fatalf("expected leading gap to stay at zero value, got %v", filled[0])
	}
}

func TestRegistryGroupsByKeyAndSkipsNullDates(t *testing.T) {
	registry := NewRegistry()
	registry.Update("a", true, 0, 1.0, true, nil)
	registry.Update("a", true, 1, 2.0, true, nil)
	registry.Update("b", true, 0, 5.0, true, nil)
	registry.Update("a", false, 99, math.NaN(), false, nil) // null date, must be skipped

	groups := registry.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	for _, g := range groups {
		if g.GroupKeyValue == "a" && g.Len() != 2 {
			t.Fatalf("expected group 'a' to have 2 rows (null date skipped), got %d", g.Len())
		}
	}
}

func TestEmitterChunksAndSignalsFinished(t *testing.T) {
	emitter, err := NewEmitter(2)
	if err != nil {
		t.Fatal(err)
	}
	rows := []Row{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 3}}
	emitter.Push(rows)

	batch1, status1 := emitter.Next()
	if len(batch1) != 2 || status1 != HaveMoreOutput {
		t.Fatalf("expected first batch of 2 with HaveMoreOutput, got len=%d status=%v", len(batch1), status1)
	}
	batch2, status2 := emitter.Next()
	if len(batch2) != 1 || status2 != Finished {
		t.Fatalf("expected second batch of 1 with Finished, got len=%d status=%v", len(batch2), status2)
	}
}

func TestEmitterRejectsNonPositiveBatchSize(t *testing.T) {
	if _, err := NewEmitter(0); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// TestFinalizeComposesStatsAndQualityDrivers covers the C5 operator end to
// end: accumulate per group, run finalize-time kernels, emit one row per
// original timestamp carrying the augmented columns.
func TestFinalizeComposesStatsAndQualityDrivers(t *testing.T) {
	registry := NewRegistry()
	for i := int64(0); i < 20; i++ {
		registry.Update("g1", true, i, float64(i%5), true, []any{"passthrough"})
	}
	freq, err := ParseIntegerFrequency(1)
	if err != nil {
		t.Fatal(err)
	}

	emitter, err := Finalize(registry, FinalizeConfig{
		Freq:       freq,
		RunStats:   true,
		RunQuality: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var rows []Row
	for {
		batch, status := emitter.Next()
		rows = append(rows, batch...)
		if status == Finished {
			break
		}
	}
	if len(rows) != 20 {
		t.Fatalf("expected 20 emitted rows (one per original timestamp), got %d", len(rows))
	}
	for _, row := range rows {
		if len(row.OtherColumns) != 2 {
			t.Fatalf("expected passthrough column plus augmented columns, got %d columns", len(row.OtherColumns))
		}
		aug, ok := row.OtherColumns[1].(AugmentedColumns)
		if !ok {
			t.Fatal("expected second column to be AugmentedColumns")
		}
		if !aug.HasGroupStats || !aug.HasGroupQuality {
			t.Fatal("expected stats and quality drivers to have populated every row")
		}
	}
}

// TestFinalizeSkipsMSTLWhenGroupTooShort covers the
// per-group kernel-failure isolation: a group too short for MSTL's period
// still emits rows, just without trend/seasonal/residual columns.
func TestFinalizeSkipsMSTLWhenGroupTooShort(t *testing.T) {
	registry := NewRegistry()
	for i := int64(0); i < 5; i++ {
		registry.Update("g1", true, i, float64(i), true, nil)
	}
	freq, _ := ParseIntegerFrequency(1)

	emitter, err := Finalize(registry, FinalizeConfig{
		Freq:            freq,
		SeasonalPeriods: []int{12}, // requires 24 points; group only has 5
	})
	if err != nil {
		t.Fatal(err)
	}
	batch, _ := emitter.Next()
	if len(batch) != 5 {
		t.Fatalf("expected all 5 rows still emitted despite MSTL skip, got %d", len(batch))
	}
	aug := batch[0].OtherColumns[0].(AugmentedColumns)
	if aug.HasTrend {
		t.Fatal("expected HasTrend false when the group is too short for the configured period")
	}
}
