package models

// UserPattern is a per-user rolling statistic keyed by energy level and hour
// of day. DurationRatio is the smoothed mean of actual/estimated duration,
// RatioVariance its smoothed variance, CompletionRate the smoothed share of
// assignments finished on the scheduled date. Rows are never deleted; older
// observations decay through the moving-average weighting.
type UserPattern struct {
	UserID         string      `json:"user_id"`
	Energy         EnergyLevel `json:"energy_level"`
	HourOfDay      int         `json:"hour_of_day"` // 0-23
	DurationRatio  float64     `json:"duration_ratio"`
	RatioVariance  float64     `json:"ratio_variance"`
	CompletionRate float64     `json:"completion_rate"`
	Observations   int         `json:"observations"`
	UpdatedAt      string      `json:"updated_at,omitempty"` // RFC3339
}

// AdjustMinutes scales an estimate by the learned duration ratio, rounding
// to the nearest minute and never shrinking below one minute.
func (p UserPattern) AdjustMinutes(estimated int) int {
	adjusted := int(float64(estimated)*p.DurationRatio + 0.5)
	if adjusted < 1 {
		adjusted = 1
	}
	return adjusted
}
