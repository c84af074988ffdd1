package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
)

func (s *Store) GetUserPattern(userID string, energy models.EnergyLevel, hourOfDay int) (models.UserPattern, error) {
	row := s.db.QueryRow(`
		SELECT user_id, energy, hour_of_day, duration_ratio, ratio_variance, completion_rate, observations, updated_at
		FROM user_patterns
		WHERE user_id = ? AND energy = ? AND hour_of_day = ?`,
		userID, string(energy), hourOfDay)

	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserPattern{}, &apperr.NotFoundError{
			Kind: "pattern",
			ID:   fmt.Sprintf("%s/%s/%02d", userID, energy, hourOfDay),
		}
	}
	return p, err
}

func (s *Store) GetUserPatterns(userID string) ([]models.UserPattern, error) {
	rows, err := s.db.Query(`
		SELECT user_id, energy, hour_of_day, duration_ratio, ratio_variance, completion_rate, observations, updated_at
		FROM user_patterns
		WHERE user_id = ?
		ORDER BY energy, hour_of_day`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []models.UserPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *Store) UpsertUserPattern(p models.UserPattern) error {
	_, err := s.db.Exec(`
		INSERT INTO user_patterns (user_id, energy, hour_of_day, duration_ratio, ratio_variance, completion_rate, observations, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, energy, hour_of_day) DO UPDATE SET
			duration_ratio = excluded.duration_ratio,
			ratio_variance = excluded.ratio_variance,
			completion_rate = excluded.completion_rate,
			observations = excluded.observations,
			updated_at = excluded.updated_at`,
		p.UserID, string(p.Energy), p.HourOfDay, p.DurationRatio, p.RatioVariance,
		p.CompletionRate, p.Observations, p.UpdatedAt,
	)
	return err
}

func scanPattern(row rowScanner) (models.UserPattern, error) {
	var p models.UserPattern
	var energy string
	err := row.Scan(&p.UserID, &energy, &p.HourOfDay, &p.DurationRatio, &p.RatioVariance,
		&p.CompletionRate, &p.Observations, &p.UpdatedAt)
	if err != nil {
		return models.UserPattern{}, err
	}
	p.Energy = models.EnergyLevel(energy)
	return p, nil
}
