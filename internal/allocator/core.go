// Package allocator assigns eligible tasks into a date's time blocks. The
// packing pass is greedy best-fit, not globally optimal; it guarantees only
// that automatic assignments never exceed block capacity and that no task is
// assigned twice for one date.
package allocator

import (
	"sort"

	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/tasksupply"
)

// candidate is a task with its pattern-adjusted duration resolved.
type candidate struct {
	task tasksupply.Task
	// fitMin orders ties: the pattern-adjusted estimate in the first
	// compatible block, never below the raw estimate.
	fitMin  int
	dueRank int
}

// blockState tracks remaining capacity of one block-instance during packing.
type blockState struct {
	block     models.TimeBlock
	remaining int
}

// packResult is the outcome of one pure packing pass.
type packResult struct {
	assigned map[string]string // taskID -> blockID
	order    []string          // taskIDs in assignment order
	deferred []models.DeferredTask
}

// dueRank orders by urgency: overdue, due today, due within the week by
// proximity, then everything else.
func dueRank(due, date string) int {
	if due == "" {
		return 1000
	}
	switch {
	case due < date:
		return 0
	case due == date:
		return 1
	default:
		d1, err1 := models.ParseDate(due)
		d2, err2 := models.ParseDate(date)
		if err1 != nil || err2 != nil {
			return 1000
		}
		days := int(d1.Sub(d2).Hours() / 24)
		if days > 900 {
			days = 900
		}
		return 1 + days
	}
}

// pack performs the greedy pass. blocks must be non-break and carry their
// remaining capacity after existing open assignments. tasks must already
// exclude anything in progress or done for the date. adjust resolves the
// pattern-adjusted duration for a task in a given block.
func pack(blocks []blockState, tasks []tasksupply.Task, date string, adjust func(tasksupply.Task, models.TimeBlock) int) packResult {
	cands := make([]candidate, 0, len(tasks))
	for _, t := range tasks {
		cands = append(cands, candidate{task: t, fitMin: orderFit(blocks, t, adjust), dueRank: dueRank(t.DueDate, date)})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.dueRank != b.dueRank {
			return a.dueRank < b.dueRank
		}
		if wa, wb := a.task.Priority.Weight(), b.task.Priority.Weight(); wa != wb {
			return wa > wb
		}
		if a.fitMin != b.fitMin {
			return a.fitMin < b.fitMin
		}
		return a.task.ID < b.task.ID
	})

	res := packResult{assigned: make(map[string]string)}
	for _, c := range cands {
		idx, hadEnergyMatch := place(blocks, c.task, adjust)
		if idx < 0 {
			reason := models.DeferNoEnergyMatch
			if hadEnergyMatch {
				reason = models.DeferNoCapacity
			}
			res.deferred = append(res.deferred, models.DeferredTask{TaskID: c.task.ID, Reason: reason})
			continue
		}
		needed := effectiveMin(c.task, blocks[idx].block, adjust)
		blocks[idx].remaining -= needed
		res.assigned[c.task.ID] = blocks[idx].block.ID
		res.order = append(res.order, c.task.ID)
	}
	return res
}

// orderFit resolves the duration used for candidate ordering: the adjusted
// estimate in the first energy-compatible block's hour. Per-block adjustment
// is applied again at fit time; with no compatible block the raw estimate
// stands.
func orderFit(blocks []blockState, task tasksupply.Task, adjust func(tasksupply.Task, models.TimeBlock) int) int {
	for i := range blocks {
		if blocks[i].block.Energy.CanHost(task.Energy) {
			return effectiveMin(task, blocks[i].block, adjust)
		}
	}
	return task.EstimatedMin
}

// place finds the first block that can host the task: exact energy matches
// across all blocks first, then one-level-lower tolerated matches. Returns
// the block index, or -1 with a flag telling whether any energy-compatible
// block existed at all.
func place(blocks []blockState, task tasksupply.Task, adjust func(tasksupply.Task, models.TimeBlock) int) (int, bool) {
	hadCompatible := false
	for pass := 0; pass < 2; pass++ {
		for i := range blocks {
			b := blocks[i].block
			if pass == 0 && b.Energy != task.Energy {
				continue
			}
			if pass == 1 && b.Energy == task.Energy {
				continue
			}
			if !b.Energy.CanHost(task.Energy) {
				continue
			}
			hadCompatible = true
			if blocks[i].remaining >= effectiveMin(task, b, adjust) {
				return i, hadCompatible
			}
		}
	}
	return -1, hadCompatible
}

// effectiveMin is the capacity charged for a task in a block: the raw
// estimate or the pattern-adjusted estimate, whichever is larger.
func effectiveMin(task tasksupply.Task, block models.TimeBlock, adjust func(tasksupply.Task, models.TimeBlock) int) int {
	adjusted := adjust(task, block)
	if adjusted > task.EstimatedMin {
		return adjusted
	}
	return task.EstimatedMin
}
