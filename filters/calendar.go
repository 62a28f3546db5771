// filters/calendar.go
package filters

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// ReadCalendarFile loads calendar events from a CSV file with columns
// time,name,currency,impact. Time is RFC3339. A header row is skipped when
// the first field is "time".
func ReadCalendarFile(path string) ([]CalendarEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	return readCalendar(csv.NewReader(f))
}

func readCalendar(r *csv.Reader) ([]CalendarEvent, error) {
	r.FieldsPerRecord = 4

	var events []CalendarEvent
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read calendar: %w", err)
		}
		line++
		if line == 1 && rec[0] == "time" {
			continue
		}

		at, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("calendar line %d: %w", line, err)
		}
		events = append(events, CalendarEvent{
			Time:     at,
			Name:     rec[1],
			Currency: rec[2],
			Impact:   rec[3],
		})
	}
	return events, nil
}
