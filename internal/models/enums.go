package models

// EnergyLevel tags a time block's expected energy or a task's required energy.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
	EnergyPeak   EnergyLevel = "peak"
)

// energyRank orders levels for compatibility checks. Unknown levels rank
// below low so they never satisfy a requirement by accident.
var energyRank = map[EnergyLevel]int{
	EnergyLow:    0,
	EnergyMedium: 1,
	EnergyHigh:   2,
	EnergyPeak:   3,
}

// Rank returns the ordinal position of the level, or -1 for unknown values.
func (e EnergyLevel) Rank() int {
	if r, ok := energyRank[e]; ok {
		return r
	}
	return -1
}

// Valid reports whether the level is one of the closed set.
func (e EnergyLevel) Valid() bool {
	_, ok := energyRank[e]
	return ok
}

// CanHost reports whether a block at this level may host a task requiring
// the given level. An exact match always hosts; one level lower is
// tolerated; anything further apart is rejected, so a high-energy task can
// never land in a low-energy block.
func (e EnergyLevel) CanHost(required EnergyLevel) bool {
	br, tr := e.Rank(), required.Rank()
	if br < 0 || tr < 0 {
		return false
	}
	return br >= tr-1
}

// Priority orders tasks for allocation and recommendation.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityWeights = map[Priority]int{
	PriorityUrgent: 50,
	PriorityHigh:   40,
	PriorityMedium: 25,
	PriorityLow:    10,
}

// Weight returns the scoring weight of the priority. Unknown priorities
// weigh the same as medium so comparisons stay total.
func (p Priority) Weight() int {
	if w, ok := priorityWeights[p]; ok {
		return w
	}
	return priorityWeights[PriorityMedium]
}

// Valid reports whether the priority is one of the closed set.
func (p Priority) Valid() bool {
	_, ok := priorityWeights[p]
	return ok
}

// TaskStatus is the lifecycle state of a scheduled task.
type TaskStatus string

const (
	StatusPlanned    TaskStatus = "planned"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusSkipped    TaskStatus = "skipped"
)

// Open reports whether the assignment still occupies block capacity.
func (s TaskStatus) Open() bool {
	return s == StatusPlanned || s == StatusInProgress
}

// DeferReason explains why the allocator could not place a task.
type DeferReason string

const (
	DeferNoCapacity    DeferReason = "NO_CAPACITY"
	DeferNoEnergyMatch DeferReason = "NO_ENERGY_MATCH"
)
