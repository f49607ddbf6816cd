package report

import (
	"fmt"
	"strings"
	"time"

	"uley/internal/models"
)

// PeriodData carries the pre-queried inputs for the period statistics.
type PeriodData struct {
	Transactions []models.CashTransaction
	TopSales     []models.ProductSale
	Sales        models.StockTotals
	Prizes       models.StockTotals
	Bookings     models.BookingTotals
}

// Period renders statistics over an inclusive range of days ending today.
func Period(start, end time.Time, days int, d PeriodData) string {
	s := SummarizeLedger(d.Transactions)

	avgDaily := 0.0
	if days > 0 {
		avgDaily = s.IncomeTotal() / float64(days)
	}
	best, worst := BestWorstDays(s.IncomeByDay)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>СТАТИСТИКА ЗА %d ДНЕЙ</b>\n%s\n", days, strings.Repeat("=", 30))
	fmt.Fprintf(&b, "📅 %s — %s\n\n", start.Format("02.01"), end.Format("02.01.2006"))

	b.WriteString("💰 <b>ФИНАНСЫ:</b>\n")
	fmt.Fprintf(&b, "📈 Выручка: <b>%s ₽</b>\n", money(s.IncomeTotal()))
	fmt.Fprintf(&b, "📉 Расходы: <b>%s ₽</b>\n", money(s.ExpenseTotal()))
	fmt.Fprintf(&b, "💎 Прибыль: <b>%s ₽</b>\n", moneySigned(s.Profit()))
	fmt.Fprintf(&b, "📊 Средний доход/день: <b>%s ₽</b>\n", money(avgDaily))
	fmt.Fprintf(&b, "%s\n\n", divider)

	fmt.Fprintf(&b, "🏆 <b>ЛУЧШИЙ ДЕНЬ:</b>\n📅 %s\n💰 %s ₽\n\n", shortDay(best.Day), money(best.Total))
	fmt.Fprintf(&b, "📉 <b>ХУДШИЙ ДЕНЬ:</b>\n📅 %s\n💰 %s ₽\n", shortDay(worst.Day), money(worst.Total))
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("🏰 <b>ЛАБИРИНТ:</b>\n")
	fmt.Fprintf(&b, "⏱ Часовые: <b>%d</b> чел.\n", s.LabyrinthHourly)
	fmt.Fprintf(&b, "♾️ Безлимит: <b>%d</b> чел.\n", s.LabyrinthUnlimited)
	fmt.Fprintf(&b, "👥 Всего детей: <b>%d</b>\n", s.LabyrinthHourly+s.LabyrinthUnlimited)
	fmt.Fprintf(&b, "%s\n\n", divider)

	b.WriteString("🍷 <b>БАР:</b>\n")
	fmt.Fprintf(&b, "💰 Выручка: <b>%s ₽</b>\n", money(d.Sales.Total))
	fmt.Fprintf(&b, "🛒 Чеков: <b>%d</b>", d.Sales.Count)

	if len(d.TopSales) > 0 {
		b.WriteString("\n\n<i>ТОП-5 товаров:</i>")
		for i, sale := range d.TopSales {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s: %s ₽", i+1, sale.Name, money(sale.Total))
		}
	}
	fmt.Fprintf(&b, "\n%s", divider)

	b.WriteString("\n\n🎂 <b>ПРАЗДНИКИ:</b>")
	fmt.Fprintf(&b, "\n🎉 Проведено: <b>%d</b> шт.", d.Bookings.Count)
	fmt.Fprintf(&b, "\n👥 Детей: <b>%d</b>", d.Bookings.Children)
	fmt.Fprintf(&b, "\n💰 Доход: <b>%s ₽</b>", money(d.Bookings.Revenue))
	fmt.Fprintf(&b, "\n%s", divider)

	b.WriteString("\n\n🧸 <b>ПРИЗОТЕКА:</b>")
	fmt.Fprintf(&b, "\n🎁 Выдано: <b>%.0f</b> шт.", d.Prizes.Qty)
	fmt.Fprintf(&b, "\n🎟 Тикеты: <b>%s</b>", money(d.Prizes.Total))

	if len(s.ExpenseByCat) > 0 {
		fmt.Fprintf(&b, "\n\n%s\n📉 <b>ТОП РАСХОДОВ:</b>", divider)
		for _, c := range topCategories(s.ExpenseByCat, 5) {
			fmt.Fprintf(&b, "\n• %s: %s ₽", c.Name, money(c.Amount))
		}
	}

	return b.String()
}

// shortDay reformats a YYYY-MM-DD key as DD.MM; "?" when the period had no
// income days at all.
func shortDay(key string) string {
	if key == "" {
		return "?"
	}
	d, err := time.Parse(dayKey, key)
	if err != nil {
		return key
	}
	return d.Format("02.01")
}
