package storage

import (
	"context"
	"time"

	"uley/internal/models"
)

// Storage defines the read interface over the venue database. The desktop
// application owns all writes; the bot only queries, except for the poll
// cursor checkpoint.
type Storage interface {
	// Recipients returns the chat ids allowed to use the bot.
	Recipients(ctx context.Context) ([]int64, error)

	// FindUsers returns employees whose full name or login contains the
	// query, case-insensitively.
	FindUsers(ctx context.Context, query string) ([]models.User, error)

	// FindUserExact resolves an employee by exact full name or login.
	// Returns nil without error when no such user exists.
	FindUserExact(ctx context.Context, name string) (*models.User, error)

	// Ledger
	CashBalance(ctx context.Context) (models.CashBalance, error)
	TransactionsByRange(ctx context.Context, from, to time.Time) ([]models.CashTransaction, error)

	// Stock moves
	TopSales(ctx context.Context, from, to time.Time, limit int) ([]models.ProductSale, error)
	SalesTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error)
	PrizeTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error)
	SalaryWriteoffs(ctx context.Context, date time.Time) ([]models.SalaryWriteoff, error)

	// Bookings
	BookingsInRange(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	BookingTotals(ctx context.Context, from, to time.Time) (models.BookingTotals, error)

	// Action log

	// ActionLog returns up to limit most recent entries, newest first.
	// userID 0 means no user filter.
	ActionLog(ctx context.Context, limit int, userID int64) ([]models.ActionLogEntry, error)
	// ActionCountSince counts entries by one user from the given moment.
	ActionCountSince(ctx context.Context, userID int64, since time.Time) (int, error)
	// LastActionTime returns the newest journal timestamp, zero when the
	// journal is empty.
	LastActionTime(ctx context.Context) (time.Time, error)

	Counts(ctx context.Context) (models.StoreCounts, error)

	// Poll cursor checkpoint (bot_state table)
	PollOffset(ctx context.Context) (int, error)
	SetPollOffset(ctx context.Context, offset int) error

	// Path returns the database file location for export and size reporting.
	// Empty for backends without a file.
	Path() string

	Close() error
}
