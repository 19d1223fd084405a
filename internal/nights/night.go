package nights

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Night identifies one calendar night of observation data across all
// telescope units.
type Night struct {
	date time.Time
}

// Parse converts a YYYY-MM-DD string into a Night.
func Parse(value string) (Night, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := time.ParseInLocation(dateLayout, trimmed, time.UTC)
	if err != nil {
		return Night{}, fmt.Errorf("parse night %q: expected YYYY-MM-DD", trimmed)
	}
	return Night{date: parsed}, nil
}

// String renders the dashed date form used in directory names and reports.
func (n Night) String() string {
	return n.date.Format(dateLayout)
}

// Key renders the date with separators stripped, used in log filenames.
func (n Night) Key() string {
	return n.date.Format("20060102")
}

// Date exposes the underlying UTC-midnight timestamp.
func (n Night) Date() time.Time {
	return n.date
}

// IsZero reports whether the night was never initialized.
func (n Night) IsZero() bool {
	return n.date.IsZero()
}
