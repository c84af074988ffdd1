// Package storagetest provides an in-memory storage.Provider for unit tests
// that exercise engine logic without a database.
package storagetest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

// MemStore implements storage.Provider over maps. Safe for concurrent use.
type MemStore struct {
	mu           sync.Mutex
	blocks       map[string]models.TimeBlock
	tasks        map[string]models.ScheduledTask
	patterns     map[string]models.UserPattern
	templates    map[string]models.DayTemplate
	fingerprints map[string]string

	// FailUpserts makes pattern upserts fail this many times, for retry tests.
	FailUpserts int
	// UpsertCalls counts pattern upsert attempts.
	UpsertCalls int
}

// New creates an empty in-memory store.
func New() *MemStore {
	return &MemStore{
		blocks:       make(map[string]models.TimeBlock),
		tasks:        make(map[string]models.ScheduledTask),
		patterns:     make(map[string]models.UserPattern),
		templates:    make(map[string]models.DayTemplate),
		fingerprints: make(map[string]string),
	}
}

func (m *MemStore) Init() error  { return nil }
func (m *MemStore) Load() error  { return nil }
func (m *MemStore) Close() error { return nil }

func (m *MemStore) AddTimeBlock(b models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[b.ID] = b
	return nil
}

func (m *MemStore) AddTimeBlocks(blocks []models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range blocks {
		m.blocks[b.ID] = b
	}
	return nil
}

func (m *MemStore) GetTimeBlock(id string) (models.TimeBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[id]
	if !ok {
		return models.TimeBlock{}, &apperr.NotFoundError{Kind: "block", ID: id}
	}
	return b, nil
}

func (m *MemStore) GetActiveTimeBlocks(userID string) ([]models.TimeBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimeBlock
	for _, b := range m.blocks {
		if b.UserID == userID && b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) UpdateTimeBlock(b models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[b.ID]; !ok {
		return &apperr.NotFoundError{Kind: "block", ID: b.ID}
	}
	m.blocks[b.ID] = b
	return nil
}

func (m *MemStore) DeactivateTimeBlock(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[id]
	if !ok {
		return &apperr.NotFoundError{Kind: "block", ID: id}
	}
	b.IsActive = false
	m.blocks[id] = b
	return nil
}

func (m *MemStore) SaveScheduledTask(t models.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *MemStore) GetScheduledTask(id string) (models.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "scheduled task", ID: id}
	}
	return t, nil
}

func (m *MemStore) GetScheduledTaskByTask(userID, taskID, date string) (models.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.UserID == userID && t.TaskID == taskID && t.Date == date && t.Status.Open() {
			return t, nil
		}
	}
	return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "scheduled task", ID: taskID}
}

func (m *MemStore) GetScheduledTasksForDate(userID, date string) ([]models.ScheduledTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduledTask
	for _, t := range m.tasks {
		if t.UserID == userID && t.Date == date {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DeletePlannedForDate(userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.UserID == userID && t.Date == date && t.Status == models.StatusPlanned {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *MemStore) UpdateScheduledTaskStatus(id string, status models.TaskStatus, at string, actualMin *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return &apperr.NotFoundError{Kind: "scheduled task", ID: id}
	}
	t.Status = status
	switch status {
	case models.StatusInProgress:
		t.StartedAt = &at
	case models.StatusDone:
		t.CompletedAt = &at
		t.ActualMin = actualMin
	}
	m.tasks[id] = t
	return nil
}

func (m *MemStore) ReassignScheduledTask(id, blockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || !t.Status.Open() {
		return &apperr.NotFoundError{Kind: "scheduled task", ID: id}
	}
	t.BlockID = blockID
	m.tasks[id] = t
	return nil
}

func patternKey(userID string, energy models.EnergyLevel, hour int) string {
	return fmt.Sprintf("%s|%s|%d", userID, energy, hour)
}

func (m *MemStore) GetUserPattern(userID string, energy models.EnergyLevel, hourOfDay int) (models.UserPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patterns[patternKey(userID, energy, hourOfDay)]
	if !ok {
		return models.UserPattern{}, &apperr.NotFoundError{Kind: "pattern", ID: userID}
	}
	return p, nil
}

func (m *MemStore) GetUserPatterns(userID string) ([]models.UserPattern, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserPattern
	for _, p := range m.patterns {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Energy != out[j].Energy {
			return out[i].Energy < out[j].Energy
		}
		return out[i].HourOfDay < out[j].HourOfDay
	})
	return out, nil
}

func (m *MemStore) UpsertUserPattern(p models.UserPattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.FailUpserts > 0 {
		m.FailUpserts--
		return &apperr.DependencyTimeoutError{Dependency: "test store"}
	}
	m.patterns[patternKey(p.UserID, p.Energy, p.HourOfDay)] = p
	return nil
}

func (m *MemStore) AddDayTemplate(t models.DayTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
	return nil
}

func (m *MemStore) UpdateDayTemplate(t models.DayTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.templates[t.ID]
	if !ok {
		return &apperr.NotFoundError{Kind: "template", ID: t.ID}
	}
	existing.Name = t.Name
	existing.Blocks = t.Blocks
	m.templates[t.ID] = existing
	return nil
}

func (m *MemStore) GetDayTemplate(id string) (models.DayTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return models.DayTemplate{}, &apperr.NotFoundError{Kind: "template", ID: id}
	}
	return t, nil
}

func (m *MemStore) GetDayTemplates(userID string) ([]models.DayTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DayTemplate
	for _, t := range m.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) ApplyDayTemplate(templateID string, blocks []models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return &apperr.NotFoundError{Kind: "template", ID: templateID}
	}
	for _, b := range blocks {
		m.blocks[b.ID] = b
	}
	t.AppliedCount++
	m.templates[templateID] = t
	return nil
}

func (m *MemStore) GetAllocationFingerprint(userID, date string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fingerprints[userID+"|"+date], nil
}

func (m *MemStore) SaveAllocationFingerprint(userID, date, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprints[userID+"|"+date] = hash
	return nil
}

func (m *MemStore) GetConfigPath() string { return ":memory:" }
