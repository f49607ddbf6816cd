package bot

import (
	"fmt"
	"strings"
	"time"
)

// ParseArchiveDate parses operator input in DD.MM or DD.MM.YYYY form.
// Without a year the current year is assumed; if that lands strictly in the
// future, the previous year is used instead, so a January lookup of
// "31.12" finds last December.
func ParseArchiveDate(now time.Time, text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, ".")

	var layoutDate time.Time
	var err error
	switch len(parts) {
	case 2:
		layoutDate, err = time.Parse("02.01.2006", fmt.Sprintf("%s.%s.%d", parts[0], parts[1], now.Year()))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", text, err)
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if layoutDate.After(today) {
			layoutDate, err = time.Parse("02.01.2006", fmt.Sprintf("%s.%s.%d", parts[0], parts[1], now.Year()-1))
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid date %q: %w", text, err)
			}
		}
	case 3:
		layoutDate, err = time.Parse("02.01.2006", text)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", text, err)
		}
	default:
		return time.Time{}, fmt.Errorf("invalid date %q: want DD.MM or DD.MM.YYYY", text)
	}
	return layoutDate, nil
}
