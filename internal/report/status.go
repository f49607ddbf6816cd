package report

import (
	"fmt"
	"strings"
	"time"

	"uley/internal/models"
)

// Version shown in the status snapshot and lifecycle notices.
const Version = "3.3"

// StatusData is the point-in-time input of the status snapshot.
type StatusData struct {
	Balance          models.CashBalance
	BookingsToday    int
	BookingsTomorrow int
	BarSales         models.StockTotals
	Prizes           models.StockTotals
	LastAction       time.Time // zero when the journal is empty
	DBSizeBytes      int64     // 0 when the store has no file
	Counts           models.StoreCounts
}

// Status renders the system status snapshot as of now.
func Status(now time.Time, d StatusData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>СТАТУС СИСТЕМЫ УЛЕЙ (v%s)</b>\n%s\n\n", Version, strings.Repeat("=", 30))

	b.WriteString("💰 <b>ГЛАВНАЯ КАССА:</b>\n")
	fmt.Fprintf(&b, "💵 Наличные: <b>%s ₽</b>\n", money(d.Balance.Cash))
	fmt.Fprintf(&b, "💳 Безнал: <b>%s ₽</b>\n", money(d.Balance.Card))
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("🎂 <b>ПРАЗДНИКИ:</b>\n")
	fmt.Fprintf(&b, "📅 Сегодня: <b>%d</b> шт.\n", d.BookingsToday)
	fmt.Fprintf(&b, "📅 Завтра: <b>%d</b> шт.\n", d.BookingsTomorrow)
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("🍷 <b>БАР (СЕГОДНЯ):</b>\n")
	fmt.Fprintf(&b, "🛒 Продаж: <b>%d</b> чеков\n", d.BarSales.Count)
	fmt.Fprintf(&b, "💰 Выручка: <b>%s ₽</b>\n", money(d.BarSales.Total))
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("🧸 <b>ПРИЗОТЕКА (СЕГОДНЯ):</b>\n")
	fmt.Fprintf(&b, "🎁 Выдано: <b>%d</b> шт.\n", d.Prizes.Count)
	fmt.Fprintf(&b, "🎟 Тикеты: <b>%s</b>\n", money(d.Prizes.Total))
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("📊 <b>БАЗА ДАННЫХ:</b>\n")
	fmt.Fprintf(&b, "📦 Размер: %s\n", dbSize(d.DBSizeBytes))
	fmt.Fprintf(&b, "🎂 Праздников: %d\n", d.Counts.Bookings)
	fmt.Fprintf(&b, "📦 Товаров: %d\n", d.Counts.Products)
	fmt.Fprintf(&b, "📋 Операций: %d\n", d.Counts.StockMoves)
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("⏰ <b>АКТИВНОСТЬ:</b>\n")
	fmt.Fprintf(&b, "🕐 Последнее действие: %s\n", Activity(now, d.LastAction))
	b.WriteString("✅ Бот: <b>РАБОТАЕТ</b>\n")
	b.WriteString("🟢 Связь с БД: <b>ОК</b>")

	return b.String()
}

// Activity buckets the time since the last journal entry: "только что"
// under a minute, minutes under an hour, whole hours beyond that.
func Activity(now, last time.Time) string {
	if last.IsZero() {
		return "нет данных"
	}
	minutes := int(now.Sub(last).Minutes())
	switch {
	case minutes < 1:
		return "только что"
	case minutes < 60:
		return fmt.Sprintf("%d мин. назад", minutes)
	default:
		return fmt.Sprintf("%d ч. назад", minutes/60)
	}
}

func dbSize(bytes int64) string {
	if bytes <= 0 {
		return "?"
	}
	return fmt.Sprintf("%.1f МБ", float64(bytes)/(1024*1024))
}
