package db

const (
	// timestampLayout is how instants are written to DATETIME columns (UTC).
	timestampLayout = "2006-01-02 15:04:05"

	// dateLayout is the calendar-day layout of local_date.
	dateLayout = "2006-01-02"
)
