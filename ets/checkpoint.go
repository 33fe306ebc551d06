package ets

// CheckpointConfig controls the memory-saving checkpointing mode: instead
// of storing every intermediate seasonal snapshot, only every
// CheckpointInterval-th state is stored, and the backward pass replays the
// shared forwardStep from the nearest earlier checkpoint to reconstruct any
// arbitrary intermediate state (spec §4.3, §9 "Checkpoint/backward
// invariant").
type CheckpointConfig struct {
	Enabled            bool
	MinSeriesLength    int // checkpointing only kicks in at n >= this
	CheckpointInterval int // k: store every k-th state
}

// DefaultCheckpointConfig matches the source's defaults: only engage
// checkpointing for series of at least 200 points, storing every 50th
// state.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{Enabled: true, MinSeriesLength: 200, CheckpointInterval: 50}
}

// Checkpoint is a snapshot (timestep, level, trend, seasonals) captured at
// regular intervals during the forward pass.
type Checkpoint struct {
	Timestep  int
	Level     float64
	Trend     float64
	Seasonals []float64
}

// ShouldUseCheckpointing reports whether checkpointing should engage for a
// series of length n under config.
func ShouldUseCheckpointing(n int, config CheckpointConfig) bool {
	if !config.Enabled {
		return false
	}
	return n >= config.MinSeriesLength
}

// CreateCheckpoints runs the forward recursion once, recording a
// Checkpoint every CheckpointInterval steps (plus the initial and final
// states), without retaining the full O(n*m) trajectory.
func CreateCheckpoints(config Config, values []float64, level0, trend0 float64, seasonal0 []float64, checkpointConfig CheckpointConfig) []Checkpoint {
	n := len(values)
	checkpoints := []Checkpoint{{Timestep: 0, Level: level0, Trend: trend0, Seasonals: append([]float64(nil), seasonal0...)}}

	if !ShouldUseCheckpointing(n, checkpointConfig) {
		return checkpoints
	}

	level := level0
	trend := trend0
	seasonals := append([]float64(nil), seasonal0...)
	m := 1
	if len(seasonals) > 0 {
		m = len(seasonals)
	}

	for t := 0; t < n; t++ {
		if t > 0 && t%checkpointConfig.CheckpointInterval == 0 {
			checkpoints = append(checkpoints, Checkpoint{
				Timestep: t, Level: level, Trend: trend, Seasonals: append([]float64(nil), seasonals...),
			})
		}
		forwardStep(config, values[t], &level, &trend, seasonals, t%m)
	}

	checkpoints = append(checkpoints, Checkpoint{Timestep: n, Level: level, Trend: trend, Seasonals: append([]float64(nil), seasonals...)})
	return checkpoints
}

// findNearestCheckpoint binary-searches for the last checkpoint with
// Timestep <= targetTime.
func findNearestCheckpoint(checkpoints []Checkpoint, targetTime int) int {
	left, right := 0, len(checkpoints)
	for left < right-1 {
		mid := (left + right) / 2
		if checkpoints[mid].Timestep <= targetTime {
			left = mid
		} else {
			right = mid
		}
	}
	return left
}

// RecomputeFromCheckpoint reconstructs the state at targetTime by
// replaying forwardStep from the nearest earlier checkpoint — the same
// step function the non-checkpointed forward pass uses, which is what
// guarantees the two paths agree bit-for-bit (invariant 2, spec §8).
func RecomputeFromCheckpoint(checkpoints []Checkpoint, config Config, values []float64, targetTime int) Checkpoint {
	idx := findNearestCheckpoint(checkpoints, targetTime)
	start := checkpoints[idx]
	if start.Timestep == targetTime {
		return start
	}

	result := Checkpoint{
		Timestep:  targetTime,
		Level:     start.Level,
		Trend:     start.Trend,
		Seasonals: append([]float64(nil), start.Seasonals...),
	}
	m := 1
	if len(result.Seasonals) > 0 {
		m = len(result.Seasonals)
	}

	for t := start.Timestep; t < targetTime; t++ {
		forwardStep(config, values[t], &result.Level, &result.Trend, result.Seasonals, t%m)
	}
	return result
}
