package report

import (
	"fmt"
	"strings"
	"time"

	"uley/internal/models"
)

// DailyData carries everything the daily report needs, pre-queried by the
// caller so the formatter stays pure.
type DailyData struct {
	Transactions    []models.CashTransaction
	TopSales        []models.ProductSale
	Sales           models.StockTotals
	Prizes          models.StockTotals
	Bookings        []models.Booking
	SalaryWriteoffs []models.SalaryWriteoff
}

// Daily renders the detailed cash report for one date. A date with no
// ledger rows produces only the "no data" line.
func Daily(date time.Time, d DailyData) string {
	human := humanDate(date)
	if len(d.Transactions) == 0 {
		return fmt.Sprintf("📅 За <b>%s</b> данных нет.", human)
	}

	s := SummarizeLedger(d.Transactions)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>ОТЧЕТ ЗА %s</b>\n%s\n\n", human, strings.Repeat("=", 30))

	fmt.Fprintf(&b, "💰 <b>ГЛАВНАЯ КАССА:</b>\n")
	fmt.Fprintf(&b, "📈 ПРИХОД: <b>+%s ₽</b>\n", money(s.IncomeTotal()))
	fmt.Fprintf(&b, "   💵 Нал: %s | 💳 Карта: %s", money(s.IncomeCash), money(s.IncomeCard))

	if len(s.IncomeByCat) > 0 {
		b.WriteString("\n   <i>Структура доходов:</i>")
		for _, c := range topCategories(s.IncomeByCat, 5) {
			fmt.Fprintf(&b, "\n   • %s: %s", c.Name, money(c.Amount))
		}
	}

	fmt.Fprintf(&b, "\n\n📉 РАСХОД: <b>-%s ₽</b>\n   💵 Нал: %s | 💳 Карта: %s",
		money(s.ExpenseTotal()), money(s.ExpenseCash), money(s.ExpenseCard))

	if len(s.ExpenseByCat) > 0 {
		b.WriteString("\n   <i>Топ расходов:</i>")
		for _, c := range topCategories(s.ExpenseByCat, 5) {
			fmt.Fprintf(&b, "\n   • %s: %s", c.Name, money(c.Amount))
		}
	}

	profitIcon := "💎"
	if s.Profit() < 0 {
		profitIcon = "🔻"
	}
	fmt.Fprintf(&b, "\n\n%s <b>ПРИБЫЛЬ: %s ₽</b>", profitIcon, moneySigned(s.Profit()))
	fmt.Fprintf(&b, "\n💵 <b>Чистый Нал: %s ₽</b>", moneySigned(s.NetCash()))
	fmt.Fprintf(&b, "\n%s", divider)

	if s.LabyrinthHourly > 0 || s.LabyrinthUnlimited > 0 {
		b.WriteString("\n\n🏰 <b>ЛАБИРИНТ:</b>")
		fmt.Fprintf(&b, "\n⏱ Часовые: <b>%d</b> чел.", s.LabyrinthHourly)
		fmt.Fprintf(&b, "\n♾️ Безлимит: <b>%d</b> чел.", s.LabyrinthUnlimited)
		fmt.Fprintf(&b, "\n👥 Всего детей: <b>%d</b>", s.LabyrinthHourly+s.LabyrinthUnlimited)
		fmt.Fprintf(&b, "\n%s", divider)
	}

	if d.Sales.Total > 0 {
		b.WriteString("\n\n🍷 <b>БАР / КУХНЯ:</b>")
		fmt.Fprintf(&b, "\n💰 Выручка: <b>%s ₽</b> (%d чеков)", money(d.Sales.Total), d.Sales.Count)
		if len(d.TopSales) > 0 {
			b.WriteString("\n\n<i>ТОП-5 продаж:</i>")
			for i, sale := range d.TopSales {
				if i == 5 {
					break
				}
				fmt.Fprintf(&b, "\n%d. %s: %s ₽", i+1, sale.Name, money(sale.Total))
			}
		}
		fmt.Fprintf(&b, "\n%s", divider)
	}

	if len(d.SalaryWriteoffs) > 0 {
		b.WriteString("\n\n📝 <b>СПИСАНИЯ В СЧЕТ ЗП:</b>")
		var totalSalary float64
		for _, w := range d.SalaryWriteoffs {
			person := w.Person
			if person == "" {
				person = "Не указан"
			}
			totalSalary += w.Amount
			fmt.Fprintf(&b, "\n• %s: <b>%s ₽</b> (%d поз.)", person, money(w.Amount), w.Items)
		}
		fmt.Fprintf(&b, "\n<b>Итого долг:</b> %s ₽", money(totalSalary))
		fmt.Fprintf(&b, "\n%s", divider)
	}

	if len(d.Bookings) > 0 {
		fmt.Fprintf(&b, "\n\n🎂 <b>ПРАЗДНИКИ:</b> %d шт.", len(d.Bookings))
		if s.BanquetIncome > 0 {
			fmt.Fprintf(&b, "\n💰 <b>Оплат получено: %s ₽</b>", money(s.BanquetIncome))
		}
		for _, bk := range d.Bookings {
			children := "?"
			if bk.ChildCount > 0 {
				children = fmt.Sprintf("%d", bk.ChildCount)
			}
			fmt.Fprintf(&b, "\n• %s | %s (%s чел.)", bk.EventTime, bk.ClientName, children)
			if bk.RoomName != "" {
				fmt.Fprintf(&b, " | %s", bk.RoomName)
			}
		}
		fmt.Fprintf(&b, "\n%s", divider)
	}

	if d.Prizes.Qty > 0 {
		b.WriteString("\n\n🧸 <b>ПРИЗОТЕКА:</b>")
		fmt.Fprintf(&b, "\n🎁 Выдано: <b>%.0f</b> шт.", d.Prizes.Qty)
		fmt.Fprintf(&b, "\n🎟 Тикеты: <b>%s</b>", money(d.Prizes.Total))
		fmt.Fprintf(&b, "\n%s", divider)
	}

	fmt.Fprintf(&b, "\n\n<i>Отчет за %s</i>", human)
	return b.String()
}
