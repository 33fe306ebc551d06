package streaming

import (
	"fmt"

	"tsforecast/tserr"
)

// GroupBuffer accumulates the rows observed for a single group key during
// the Update phase, and is handed off wholesale at Finalize (spec §4.5
// "GroupBuffer"). Mutated only by the accumulating thread for this group;
// the engine performs no cross-group synchronization.
type GroupBuffer struct {
	GroupKeyValue string
	Timestamps    []int64
	Values        []float64
	HasValue      []bool   // false marks a row whose value column was null
	OtherColumns  [][]any  // passthrough row slices, aligned with Timestamps
}

// NewGroupBuffer creates an empty buffer for groupKeyValue, the canonical
// textual form of the group key (spec §4.5 Update phase step 1).
func NewGroupBuffer(groupKeyValue string) *GroupBuffer {
	return &GroupBuffer{GroupKeyValue: groupKeyValue}
}

// Append records one row. A null date is the caller's responsibility to
// skip before calling Append (spec §4.6 Update: "skip rows with a null
// date").
func (b *GroupBuffer) Append(timestamp int64, value float64, hasValue bool, otherColumns []any) {
	b.Timestamps = append(b.Timestamps, timestamp)
	b.Values = append(b.Values, value)
	b.HasValue = append(b.HasValue, hasValue)
	b.OtherColumns = append(b.OtherColumns, otherColumns)
}

// Len returns the number of accumulated rows.
func (b *GroupBuffer) Len() int { return len(b.Timestamps) }

// Points converts the buffer's rows with a present value into sorted
// Points, ready for FillGaps.
func (b *GroupBuffer) Points() []Point {
	points := make([]Point, 0, len(b.Timestamps))
	for i := range b.Timestamps {
		if b.HasValue[i] {
			points = append(points, Point{Index: b.Timestamps[i], Value: b.Values[i]})
		}
	}
	SortPoints(points)
	return points
}

// Registry owns every GroupBuffer seen during the Update phase, keyed by
// canonical group-key string. It is the operator-level state the host's
// Init/Update/Finalize calls thread through.
type Registry struct {
	buffers map[string]*GroupBuffer
	order   []string // insertion order, for deterministic emission
}

// NewRegistry is the Init phase: construct empty per-group state (spec §4.6
// Init).
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[string]*GroupBuffer)}
}

// Update resolves groupKeyValue to its buffer (creating one on first
// observation of the key, per spec §4.6 Update step 2) and appends the
// row, unless hasDate is false (a null date is skipped entirely).
func (r *Registry) Update(groupKeyValue string, hasDate bool, timestamp int64, value float64, hasValue bool, otherColumns []any) {
	if !hasDate {
		return
	}
	buffer, ok := r.buffers[groupKeyValue]
	if !ok {
		buffer = NewGroupBuffer(groupKeyValue)
		r.buffers[groupKeyValue] = buffer
		r.order = append(r.order, groupKeyValue)
	}
	buffer.Append(timestamp, value, hasValue, otherColumns)
}

// Groups returns every accumulated GroupBuffer in the order their group
// key was first observed, the deterministic iteration order Finalize uses.
func (r *Registry) Groups() []*GroupBuffer {
	result := make([]*GroupBuffer, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.buffers[key])
	}
	return result
}

// EmissionStatus mirrors the host contract's two-value signal: the
// finalize loop reports HaveMoreOutput until every group has been drained,
// then Finished (spec §4.6 Finalize: "chunked to a batch-size cap...
// signals HAVE_MORE_OUTPUT until all groups are drained and then
// FINISHED").
type EmissionStatus int

const (
	HaveMoreOutput EmissionStatus = iota
	Finished
)

// DefaultBatchSize is the row cap per emitted chunk (spec §4.6: "~2048
// rows").
const DefaultBatchSize = 2048

// Row is one emitted output row: the group key, the original timestamp,
// the value actually used (post gap-fill/fill-forward if applicable), and
// the preserved passthrough columns.
type Row struct {
	GroupKeyValue string
	Timestamp     int64
	Value         float64
	OtherColumns  []any
}

// Emitter buffers finalize-time rows across repeated Next() calls so the
// host can pull output in DefaultBatchSize-row chunks.
type Emitter struct {
	pending   []Row
	batchSize int
}

// NewEmitter constructs an Emitter with the given batch size cap (use
// DefaultBatchSize unless the host requests otherwise).
func NewEmitter(batchSize int) (*Emitter, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be >= 1", tserr.ErrInvalidInput)
	}
	return &Emitter{batchSize: batchSize}, nil
}

// Push queues rows for emission.
func (e *Emitter) Push(rows []Row) { e.pending = append(e.pending, rows...) }

// Next pops up to one batch of rows and reports whether more output
// remains after this call.
func (e *Emitter) Next() ([]Row, EmissionStatus) {
	if len(e.pending) == 0 {
		return nil, Finished
	}
	n := e.batchSize
	if n > len(e.pending) {
		n = len(e.pending)
	}
	batch := e.pending[:n]
	e.pending = e.pending[n:]
	if len(e.pending) == 0 {
		return batch, Finished
	}
	return batch, HaveMoreOutput
}
