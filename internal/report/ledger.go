// Package report renders query results into the chat messages the bot
// sends. All formatters are pure: rows in, HTML-formatted text out.
package report

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"uley/internal/models"
)

const dayKey = "2006-01-02"

// The desktop app embeds labyrinth visitor counters in free-text ledger
// descriptions. Each visit is recorded twice (entry and exit), hence the
// halving in SummarizeLedger.
var (
	reLabHourly    = regexp.MustCompile(`Час:\s*(\d+)`)
	reLabUnlimited = regexp.MustCompile(`Безлим:\s*(\d+)`)
)

// LedgerSummary is the categorical aggregation shared by the daily report
// and the period statistics.
type LedgerSummary struct {
	IncomeCash   float64
	IncomeCard   float64
	ExpenseCash  float64
	ExpenseCard  float64
	IncomeByCat  map[string]float64
	ExpenseByCat map[string]float64
	IncomeByDay  map[string]float64

	LabyrinthHourly    int
	LabyrinthUnlimited int

	// Income from banquet / birthday categories.
	BanquetIncome float64

	Rows int
}

func (s LedgerSummary) IncomeTotal() float64  { return s.IncomeCash + s.IncomeCard }
func (s LedgerSummary) ExpenseTotal() float64 { return s.ExpenseCash + s.ExpenseCard }
func (s LedgerSummary) Profit() float64       { return s.IncomeTotal() - s.ExpenseTotal() }
func (s LedgerSummary) NetCash() float64      { return s.IncomeCash - s.ExpenseCash }

// SummarizeLedger partitions ledger rows by operation and payment type and
// scrapes the labyrinth counters out of descriptions.
func SummarizeLedger(rows []models.CashTransaction) LedgerSummary {
	s := LedgerSummary{
		IncomeByCat:  make(map[string]float64),
		ExpenseByCat: make(map[string]float64),
		IncomeByDay:  make(map[string]float64),
		Rows:         len(rows),
	}

	for _, row := range rows {
		cat := row.Category
		if cat == "" {
			cat = "Прочее"
		}

		if row.OperationType == models.OpIncome {
			if row.PaymentType == models.PayCash {
				s.IncomeCash += row.Amount
			} else {
				s.IncomeCard += row.Amount
			}
			s.IncomeByCat[cat] += row.Amount
			s.IncomeByDay[row.Date.Format(dayKey)] += row.Amount

			if strings.Contains(cat, "Банкет") || strings.Contains(strings.ToLower(cat), "др") {
				s.BanquetIncome += row.Amount
			}
		} else {
			if row.PaymentType == models.PayCash {
				s.ExpenseCash += row.Amount
			} else {
				s.ExpenseCard += row.Amount
			}
			s.ExpenseByCat[cat] += row.Amount
		}

		if row.Description != "" && strings.Contains(row.Category, "Лабиринт") {
			if m := reLabHourly.FindStringSubmatch(row.Description); m != nil {
				n, _ := strconv.Atoi(m[1])
				s.LabyrinthHourly += n
			}
			if m := reLabUnlimited.FindStringSubmatch(row.Description); m != nil {
				n, _ := strconv.Atoi(m[1])
				s.LabyrinthUnlimited += n
			}
		}
	}

	s.LabyrinthHourly /= 2
	s.LabyrinthUnlimited /= 2
	return s
}

// DayTotal is one day of income for best/worst-day selection.
type DayTotal struct {
	Day   string // YYYY-MM-DD
	Total float64
}

// BestWorstDays picks the highest- and lowest-income days. Days are scanned
// in ascending date order and replaced only on a strict improvement, so the
// earliest day wins any tie.
func BestWorstDays(incomeByDay map[string]float64) (best, worst DayTotal) {
	days := make([]string, 0, len(incomeByDay))
	for d := range incomeByDay {
		days = append(days, d)
	}
	sort.Strings(days)

	for i, d := range days {
		total := incomeByDay[d]
		if i == 0 || total > best.Total {
			best = DayTotal{Day: d, Total: total}
		}
		if i == 0 || total < worst.Total {
			worst = DayTotal{Day: d, Total: total}
		}
	}
	return best, worst
}

// topCategories returns up to n categories sorted by amount descending,
// names breaking ties for a stable output.
func topCategories(byCat map[string]float64, n int) []struct {
	Name   string
	Amount float64
} {
	type entry = struct {
		Name   string
		Amount float64
	}
	out := make([]entry, 0, len(byCat))
	for name, amount := range byCat {
		out = append(out, entry{name, amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// money renders an amount the way the desktop app does: rounded to whole
// units with comma-separated thousands.
func money(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

// moneySigned always carries an explicit sign, as profit lines do.
func moneySigned(v float64) string {
	if math.Round(v) < 0 {
		return money(v)
	}
	return "+" + money(v)
}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

var weekdayFull = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

func humanDate(d time.Time) string {
	return fmt.Sprintf("%s (%s)", d.Format("02.01.2006"), weekdayFull[d.Weekday()])
}

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━"
