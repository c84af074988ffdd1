package sqlite

import (
	"database/sql"
	"errors"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

const taskColumns = `id, user_id, org_id, task_id, block_id, scheduled_date, estimated_min, status, context_tag, priority, energy, due_date, created_at, started_at, completed_at, actual_min`

func (s *Store) SaveScheduledTask(t models.ScheduledTask) error {
	_, err := s.db.Exec(`
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.OrgID, t.TaskID, t.BlockID, t.Date, t.EstimatedMin,
		string(t.Status), t.Context, string(t.Priority), string(t.Energy), t.DueDate,
		t.CreatedAt, t.StartedAt, t.CompletedAt, t.ActualMin,
	)
	return err
}

func (s *Store) GetScheduledTask(id string) (models.ScheduledTask, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, id)
	t, err := scanScheduledTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "scheduled task", ID: id}
	}
	return t, err
}

func (s *Store) GetScheduledTaskByTask(userID, taskID, date string) (models.ScheduledTask, error) {
	row := s.db.QueryRow(`
		SELECT `+taskColumns+` FROM scheduled_tasks
		WHERE user_id = ? AND task_id = ? AND scheduled_date = ? AND status IN ('planned', 'in_progress')`,
		userID, taskID, date)
	t, err := scanScheduledTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduledTask{}, &apperr.NotFoundError{Kind: "scheduled task", ID: taskID}
	}
	return t, err
}

func (s *Store) GetScheduledTasksForDate(userID, date string) ([]models.ScheduledTask, error) {
	rows, err := s.db.Query(`
		SELECT `+taskColumns+` FROM scheduled_tasks
		WHERE user_id = ? AND scheduled_date = ?
		ORDER BY created_at`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.ScheduledTask
	for rows.Next() {
		t, err := scanScheduledTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// DeletePlannedForDate removes only still-planned assignments so a re-run
// can recompute them. Tasks in progress or done are never touched.
func (s *Store) DeletePlannedForDate(userID, date string) error {
	_, err := s.db.Exec(`
		DELETE FROM scheduled_tasks
		WHERE user_id = ? AND scheduled_date = ? AND status = 'planned'`,
		userID, date)
	return err
}

func (s *Store) UpdateScheduledTaskStatus(id string, status models.TaskStatus, at string, actualMin *int) error {
	var res sql.Result
	var err error
	switch status {
	case models.StatusInProgress:
		res, err = s.db.Exec(`UPDATE scheduled_tasks SET status = ?, started_at = ? WHERE id = ?`,
			string(status), at, id)
	case models.StatusDone:
		res, err = s.db.Exec(`UPDATE scheduled_tasks SET status = ?, completed_at = ?, actual_min = ? WHERE id = ?`,
			string(status), at, actualMin, id)
	default:
		res, err = s.db.Exec(`UPDATE scheduled_tasks SET status = ? WHERE id = ?`, string(status), id)
	}
	if err != nil {
		return err
	}
	return requireRow(res, "scheduled task", id)
}

func (s *Store) ReassignScheduledTask(id, blockID string) error {
	res, err := s.db.Exec(`UPDATE scheduled_tasks SET block_id = ? WHERE id = ? AND status IN ('planned', 'in_progress')`,
		blockID, id)
	if err != nil {
		return err
	}
	return requireRow(res, "scheduled task", id)
}

func scanScheduledTask(row rowScanner) (models.ScheduledTask, error) {
	var t models.ScheduledTask
	var status, priority, energy string
	var startedAt, completedAt sql.NullString
	var actualMin sql.NullInt64

	err := row.Scan(
		&t.ID, &t.UserID, &t.OrgID, &t.TaskID, &t.BlockID, &t.Date, &t.EstimatedMin,
		&status, &t.Context, &priority, &energy, &t.DueDate,
		&t.CreatedAt, &startedAt, &completedAt, &actualMin,
	)
	if err != nil {
		return models.ScheduledTask{}, err
	}

	t.Status = models.TaskStatus(status)
	t.Priority = models.Priority(priority)
	t.Energy = models.EnergyLevel(energy)
	if startedAt.Valid {
		t.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.String
	}
	if actualMin.Valid {
		m := int(actualMin.Int64)
		t.ActualMin = &m
	}
	return t, nil
}
