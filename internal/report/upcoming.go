package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"uley/internal/models"
)

// UpcomingWindowDays is how far ahead the events digest looks, inclusive.
const UpcomingWindowDays = 14

// Upcoming renders the bookings of the next two weeks grouped by date.
// The bookings are expected to already lie within the window; the caller
// queries [today, today+14d].
func Upcoming(today time.Time, bookings []models.Booking) string {
	if len(bookings) == 0 {
		return "🎂 <b>Ближайшие ДР:</b>\n\nНа ближайшие 2 недели праздников не запланировано."
	}

	byDate := make(map[string][]models.Booking)
	for _, bk := range bookings {
		key := bk.EventDate.Format(dayKey)
		byDate[key] = append(byDate[key], bk)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var b strings.Builder
	fmt.Fprintf(&b, "🎂 <b>БЛИЖАЙШИЕ ДР (14 дней):</b>\n%s\n\n", strings.Repeat("=", 30))

	for _, dateStr := range dates {
		date, _ := time.Parse(dayKey, dateStr)
		formatted := fmt.Sprintf("%s (%s)", date.Format("02.01"), weekdayShort[date.Weekday()])
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			formatted = "🔴 " + formatted
		}

		fmt.Fprintf(&b, "📅 <b>%s</b> (%s)\n", formatted, relativeDay(today, date))

		group := byDate[dateStr]
		sort.SliceStable(group, func(i, j int) bool { return group[i].EventTime < group[j].EventTime })
		for _, bk := range group {
			age := "?"
			if bk.Age > 0 {
				age = fmt.Sprintf("%d", bk.Age)
			}
			fmt.Fprintf(&b, "  %s <b>%s</b> (%s лет)\n", statusGlyph(bk.Status), bk.ClientName, age)
			fmt.Fprintf(&b, "     ⏰ %s | 👥 %d чел.\n", bk.EventTime, bk.ChildCount)
			if bk.AnimatorHero != "" && bk.AnimatorHero != "-" {
				fmt.Fprintf(&b, "     🎭 Герой: %s\n", bk.AnimatorHero)
			}
			if bk.RoomName != "" && bk.RoomName != "-" {
				fmt.Fprintf(&b, "     🏠 Комната: %s\n", bk.RoomName)
			}
			if bk.PackageName != "" && bk.PackageName != "-" {
				fmt.Fprintf(&b, "     📦 Пакет: %s\n", bk.PackageName)
			}
			if bk.TotalPrice > 0 {
				fmt.Fprintf(&b, "     💰 Стоимость: %s ₽\n", money(bk.TotalPrice))
			}
			if bk.Phone != "" {
				fmt.Fprintf(&b, "     📞 %s\n", bk.Phone)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat("—", 15))
	}

	var totalChildren int
	var totalRevenue float64
	for _, bk := range bookings {
		totalChildren += bk.ChildCount
		totalRevenue += bk.TotalPrice
	}
	fmt.Fprintf(&b, "📊 <b>Итого:</b> %d праздников | %d детей | %s ₽",
		len(bookings), totalChildren, money(totalRevenue))

	return b.String()
}

// relativeDay labels a date relative to today; the same day gets the
// celebratory sentinel instead of "через 0 дн.".
func relativeDay(today, date time.Time) string {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(t).Hours() / 24)
	switch {
	case days == 0:
		return "СЕГОДНЯ! 🎉"
	case days == 1:
		return "завтра"
	default:
		return fmt.Sprintf("через %d дн.", days)
	}
}

func statusGlyph(status string) string {
	switch status {
	case "", "активен":
		return "✅"
	case "отложен":
		return "⏸️"
	default:
		return "❌"
	}
}
