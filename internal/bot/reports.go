package bot

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uley/internal/report"
)

// reportBuilder gathers store rows and renders one report.
type reportBuilder func(ctx context.Context) (string, error)

// sendReport is the single error boundary for report generation: any
// storage failure becomes one user-facing error message and a warn log.
func (b *Bot) sendReport(ctx context.Context, chatID int64, build reportBuilder) {
	text, err := build(ctx)
	if err != nil {
		b.logger.Warn("Report generation failed", zap.Error(err))
		b.send(chatID, msgReportFailed)
		return
	}
	b.send(chatID, text)
}

func (b *Bot) dailyReportFor(date time.Time) reportBuilder {
	return func(ctx context.Context) (string, error) {
		transactions, err := b.db.TransactionsByRange(ctx, date, date)
		if err != nil {
			return "", fmt.Errorf("daily report ledger: %w", err)
		}
		data := report.DailyData{Transactions: transactions}
		if len(transactions) == 0 {
			// No ledger rows: the formatter short-circuits, skip the rest.
			return report.Daily(date, data), nil
		}

		if data.TopSales, err = b.db.TopSales(ctx, date, date, 10); err != nil {
			return "", fmt.Errorf("daily report sales: %w", err)
		}
		if data.Sales, err = b.db.SalesTotals(ctx, date, date); err != nil {
			return "", fmt.Errorf("daily report sales totals: %w", err)
		}
		if data.Prizes, err = b.db.PrizeTotals(ctx, date, date); err != nil {
			return "", fmt.Errorf("daily report prizes: %w", err)
		}
		if data.Bookings, err = b.db.BookingsInRange(ctx, date, date); err != nil {
			return "", fmt.Errorf("daily report bookings: %w", err)
		}
		if data.SalaryWriteoffs, err = b.db.SalaryWriteoffs(ctx, date); err != nil {
			return "", fmt.Errorf("daily report writeoffs: %w", err)
		}
		return report.Daily(date, data), nil
	}
}

func (b *Bot) periodReportFor(days int) reportBuilder {
	return func(ctx context.Context) (string, error) {
		end := today()
		start := end.AddDate(0, 0, -(days - 1))

		transactions, err := b.db.TransactionsByRange(ctx, start, end)
		if err != nil {
			return "", fmt.Errorf("period report ledger: %w", err)
		}
		data := report.PeriodData{Transactions: transactions}

		if data.TopSales, err = b.db.TopSales(ctx, start, end, 5); err != nil {
			return "", fmt.Errorf("period report sales: %w", err)
		}
		if data.Sales, err = b.db.SalesTotals(ctx, start, end); err != nil {
			return "", fmt.Errorf("period report sales totals: %w", err)
		}
		if data.Prizes, err = b.db.PrizeTotals(ctx, start, end); err != nil {
			return "", fmt.Errorf("period report prizes: %w", err)
		}
		if data.Bookings, err = b.db.BookingTotals(ctx, start, end); err != nil {
			return "", fmt.Errorf("period report bookings: %w", err)
		}
		return report.Period(start, end, days, data), nil
	}
}

func (b *Bot) statusReport(ctx context.Context) (string, error) {
	now := time.Now()
	day := today()
	tomorrow := day.AddDate(0, 0, 1)

	var data report.StatusData
	var err error

	if data.Balance, err = b.db.CashBalance(ctx); err != nil {
		return "", fmt.Errorf("status balance: %w", err)
	}
	todayBookings, err := b.db.BookingTotals(ctx, day, day)
	if err != nil {
		return "", fmt.Errorf("status bookings today: %w", err)
	}
	data.BookingsToday = todayBookings.Count
	tomorrowBookings, err := b.db.BookingTotals(ctx, tomorrow, tomorrow)
	if err != nil {
		return "", fmt.Errorf("status bookings tomorrow: %w", err)
	}
	data.BookingsTomorrow = tomorrowBookings.Count
	if data.BarSales, err = b.db.SalesTotals(ctx, day, day); err != nil {
		return "", fmt.Errorf("status sales: %w", err)
	}
	if data.Prizes, err = b.db.PrizeTotals(ctx, day, day); err != nil {
		return "", fmt.Errorf("status prizes: %w", err)
	}
	if data.LastAction, err = b.db.LastActionTime(ctx); err != nil {
		return "", fmt.Errorf("status last action: %w", err)
	}
	if data.Counts, err = b.db.Counts(ctx); err != nil {
		return "", fmt.Errorf("status counts: %w", err)
	}
	if path := b.db.Path(); path != "" {
		if info, err := os.Stat(path); err == nil {
			data.DBSizeBytes = info.Size()
		}
	}

	return report.Status(now, data), nil
}

func (b *Bot) upcomingReport(ctx context.Context) (string, error) {
	day := today()
	end := day.AddDate(0, 0, report.UpcomingWindowDays)
	bookings, err := b.db.BookingsInRange(ctx, day, end)
	if err != nil {
		return "", fmt.Errorf("upcoming events: %w", err)
	}
	return report.Upcoming(day, bookings), nil
}

func (b *Bot) actionLogReport(userID int64) reportBuilder {
	return func(ctx context.Context) (string, error) {
		entries, err := b.db.ActionLog(ctx, actionLogPageSize, userID)
		if err != nil {
			return "", fmt.Errorf("action log: %w", err)
		}
		return report.ActionLog(entries), nil
	}
}

// sendDatabaseFile ships the store file to the super-admin as a document.
func (b *Bot) sendDatabaseFile(chatID int64) {
	b.send(chatID, "⏳ Подготовка файла базы данных...")

	path := b.db.Path()
	if path == "" {
		b.send(chatID, "❌ Текущее хранилище не является файлом на диске.")
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		b.logger.Warn("Failed to read database file", zap.Error(err), zap.String("path", path))
		b.send(chatID, "❌ Файл базы данных не найден на диске.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "backup.db", Bytes: raw})
	b.deliver(doc)
}
