package grid

import "slices"

// ChangeRecord is the most recent removal seen since the last final pass.
// A zero ChangedCount means nothing was removed.
type ChangeRecord struct {
	FirstChangedPosition int
	ChangedCount         int
}

type mutationKind int

const (
	mutationRemove mutationKind = iota
	mutationInsert
)

type mutation struct {
	kind  mutationKind
	start int
	count int
}

// ChangeTracker records data-set mutations between layout passes. It lets a
// predictive pass reconstruct the pre-mutation view and map pre-mutation
// positions to their current positions.
type ChangeTracker struct {
	record   ChangeRecord
	ops      []mutation
	removed  int
	inserted int
}

// Record returns the most recent removal.
func (t *ChangeTracker) Record() ChangeRecord {
	return t.record
}

// Pending reports whether any mutation has been recorded.
func (t *ChangeTracker) Pending() bool {
	return len(t.ops) > 0
}

// Reset forgets everything recorded so far.
func (t *ChangeTracker) Reset() {
	t.record = ChangeRecord{}
	t.ops = t.ops[:0]
	t.removed = 0
	t.inserted = 0
}

// Removed records count items removed at start.
func (t *ChangeTracker) Removed(start, count int) {
	if count <= 0 {
		return
	}
	t.record = ChangeRecord{FirstChangedPosition: start, ChangedCount: count}
	t.ops = append(t.ops, mutation{kind: mutationRemove, start: start, count: count})
	t.removed += count
}

// Inserted records count items inserted at start.
func (t *ChangeTracker) Inserted(start, count int) {
	if count <= 0 {
		return
	}
	t.ops = append(t.ops, mutation{kind: mutationInsert, start: start, count: count})
	t.inserted += count
}

// PreLayoutItemCount returns the item count before the recorded mutations.
func (t *ChangeTracker) PreLayoutItemCount(current int) int {
	n := current + t.removed - t.inserted
	if n < 0 {
		return 0
	}
	return n
}

// RemovedPositions returns the pre-mutation positions of every removed item,
// in ascending order. Items inserted and removed again are left out.
func (t *ChangeTracker) RemovedPositions() []int {
	var out []int
	for i, op := range t.ops {
		if op.kind != mutationRemove {
			continue
		}
		for p := op.start; p < op.start+op.count; p++ {
			if pre, ok := t.preLayoutPosition(i, p); ok {
				out = append(out, pre)
			}
		}
	}
	slices.Sort(out)
	return out
}

// preLayoutPosition maps position p, as seen just before ops[n], back to
// its pre-mutation position. It returns false when p was inserted.
func (t *ChangeTracker) preLayoutPosition(n, p int) (int, bool) {
	for i := n - 1; i >= 0; i-- {
		op := t.ops[i]
		switch op.kind {
		case mutationRemove:
			if p >= op.start {
				p += op.count
			}
		case mutationInsert:
			if p >= op.start+op.count {
				p -= op.count
			} else if p >= op.start {
				return NoPosition, false
			}
		}
	}
	return p, true
}

// CurrentPosition maps a pre-mutation position to its position now. It
// returns false when the item at that position was removed.
func (t *ChangeTracker) CurrentPosition(preLayout int) (int, bool) {
	p := preLayout
	for _, op := range t.ops {
		switch op.kind {
		case mutationRemove:
			if p >= op.start && p < op.start+op.count {
				return NoPosition, false
			}
			if p >= op.start+op.count {
				p -= op.count
			}
		case mutationInsert:
			if p >= op.start {
				p += op.count
			}
		}
	}
	return p, true
}

// ItemsRemoved records that count items starting at start were removed.
// Attached cells in the range are flagged removed and later cells shift
// left. Run a predictive pass then a final pass to reconcile the layout.
func (lm *LayoutManager) ItemsRemoved(start, count int) {
	if start < 0 || count <= 0 {
		return
	}
	lm.changes.Removed(start, count)
	for _, c := range lm.children {
		switch {
		case c.removed:
		case c.position >= start+count:
			c.position -= count
		case c.position >= start:
			c.position = NoPosition
			c.removed = true
		}
	}
}

// ItemsInserted records that count items were inserted at start. Attached
// cells at or after start shift right.
func (lm *LayoutManager) ItemsInserted(start, count int) {
	if start < 0 || count <= 0 {
		return
	}
	lm.changes.Inserted(start, count)
	for _, c := range lm.children {
		if !c.removed && c.position >= start {
			c.position += count
		}
	}
}

// ItemsChanged marks the attached cells in [start, start+count) for
// rebinding on the next final pass.
func (lm *LayoutManager) ItemsChanged(start, count int) {
	for _, c := range lm.children {
		if !c.removed && c.position >= start && c.position < start+count {
			c.invalid = true
		}
	}
}

// DataSetChanged marks every attached cell for rebinding on the next final
// pass without moving the window.
func (lm *LayoutManager) DataSetChanged() {
	lm.changes.Reset()
	for _, c := range lm.children {
		c.invalid = true
	}
}

// DataSetReplaced drops every cell and lays out the new data from the origin.
func (lm *LayoutManager) DataSetReplaced() {
	lm.changes.Reset()
	lm.RemoveAll()
	lm.window.FirstVisiblePosition = 0
	lm.Layout(PassFinal)
}

// ApplyChanges runs the predictive pass followed by the final pass.
func (lm *LayoutManager) ApplyChanges() {
	if lm.changes.Pending() {
		lm.Layout(PassPredictive)
	}
	lm.Layout(PassFinal)
}
