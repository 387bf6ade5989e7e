package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/models"
)

// InsertFlipEvent appends an accepted flip to the event log. local_date is the
// flip's calendar day in loc so daily grouping follows the user's midnight.
func (db *DB) InsertFlipEvent(ctx context.Context, rec models.FlipRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	query := `
		INSERT INTO flip_events (id, result, question, local_date, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		rec.ID,
		string(rec.Result),
		nullString(rec.Question),
		rec.Timestamp.In(loc).Format(dateLayout),
		rec.Timestamp.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert flip event: %w", err)
	}
	return nil
}

// CountFlipEvents returns the number of recorded flip events.
func (db *DB) CountFlipEvents(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM flip_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count flip events: %w", err)
	}
	return n, nil
}

// DeleteFlipEvents removes every flip event. Used when the user clears history.
func (db *DB) DeleteFlipEvents(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM flip_events"); err != nil {
		return fmt.Errorf("failed to delete flip events: %w", err)
	}
	return nil
}

// dateFilterClause returns a WHERE fragment and args limiting local_date to
// the last days calendar days ending at now. days <= 0 means no limit.
func dateFilterClause(days int, now time.Time, loc *time.Location) (string, []any) {
	if days <= 0 {
		return "", nil
	}
	cutoff := now.In(loc).AddDate(0, 0, -(days - 1)).Format(dateLayout)
	return " WHERE local_date >= ?", []any{cutoff}
}

// GetFlipHistoryStats aggregates the event log over timeRange.
func (db *DB) GetFlipHistoryStats(ctx context.Context, timeRange models.TimeRange, now time.Time, loc *time.Location) (*models.FlipHistoryStats, error) {
	if loc == nil {
		loc = time.Local
	}
	where, args := dateFilterClause(timeRange.Days(), now, loc)

	stats := &models.FlipHistoryStats{TimeRange: timeRange}

	daily, err := db.getDailyFlipCounts(ctx, where, args, loc)
	if err != nil {
		return nil, err
	}
	stats.Daily = daily
	for _, d := range daily {
		stats.Heads += d.Heads
		stats.Tails += d.Tails
	}
	stats.TotalFlips = stats.Heads + stats.Tails

	if stats.TotalFlips == 0 {
		return stats, nil
	}

	var first, last string
	rangeQuery := "SELECT MIN(timestamp), MAX(timestamp) FROM flip_events" + where
	if err := db.QueryRowContext(ctx, rangeQuery, args...).Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("failed to query flip range: %w", err)
	}
	stats.FirstFlip = parseTimestamp(first)
	stats.LastFlip = parseTimestamp(last)

	streak, outcome, err := db.longestStreak(ctx, where, args)
	if err != nil {
		return nil, err
	}
	stats.LongestStreak = streak
	stats.StreakOutcome = outcome

	return stats, nil
}

func (db *DB) getDailyFlipCounts(ctx context.Context, where string, args []any, loc *time.Location) ([]models.DailyFlipCount, error) {
	query := `
		SELECT
			local_date,
			SUM(CASE WHEN result = 'heads' THEN 1 ELSE 0 END) as heads,
			SUM(CASE WHEN result = 'tails' THEN 1 ELSE 0 END) as tails
		FROM flip_events` + where + `
		GROUP BY local_date
		ORDER BY local_date ASC
	`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily flips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.DailyFlipCount
	for rows.Next() {
		var date string
		var d models.DailyFlipCount
		if err := rows.Scan(&date, &d.Heads, &d.Tails); err != nil {
			return nil, fmt.Errorf("failed to scan daily flips: %w", err)
		}
		parsed, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			continue
		}
		d.Date = parsed
		out = append(out, d)
	}
	return out, rows.Err()
}

func (db *DB) longestStreak(ctx context.Context, where string, args []any) (int, models.Outcome, error) {
	query := "SELECT result FROM flip_events" + where + " ORDER BY timestamp DESC, rowid DESC"
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, "", fmt.Errorf("failed to query flip sequence: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.FlipRecord
	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return 0, "", fmt.Errorf("failed to scan flip result: %w", err)
		}
		records = append(records, models.FlipRecord{Result: models.Outcome(result)})
	}
	if err := rows.Err(); err != nil {
		return 0, "", err
	}

	n, o := models.LongestStreak(records)
	return n, o, nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
