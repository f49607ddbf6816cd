// Package stubs provides the in-memory Storage used by tests and by the
// USE_MOCK_DB development mode.
package stubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"uley/internal/models"
)

// StockMove mirrors one row of the stock_moves table closely enough for
// the aggregations the bot runs.
type StockMove struct {
	Date         time.Time
	MoveType     string // продажа / выдача_приза / списание / приход
	Product      string
	Category     string
	Qty          float64
	Total        float64
	WriteoffType string
	SalaryPerson string
	RetailPrice  float64
}

// MockDB is an in-memory implementation of storage.Storage.
type MockDB struct {
	mu           sync.RWMutex
	recipients   []int64
	users        []models.User
	transactions []models.CashTransaction
	moves        []StockMove
	bookings     []models.Booking
	log          []models.ActionLogEntry
	logUserIDs   []int64 // parallel to log
	pollOffset   int
	products     int
}

func NewMockDB() *MockDB {
	return &MockDB{}
}

// Fixture helpers

func (m *MockDB) AddRecipient(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, chatID)
}

func (m *MockDB) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

func (m *MockDB) AddTransaction(tx models.CashTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
}

func (m *MockDB) AddMove(mv StockMove) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, mv)
}

func (m *MockDB) AddBooking(b models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, b)
}

func (m *MockDB) AddLogEntry(userID int64, e models.ActionLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, e)
	m.logUserIDs = append(m.logUserIDs, userID)
}

func (m *MockDB) SetProductCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = n
}

// Storage implementation

func (m *MockDB) Recipients(ctx context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int64(nil), m.recipients...), nil
}

func (m *MockDB) FindUsers(ctx context.Context, query string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(query))
	var found []models.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.FullName), needle) ||
			strings.Contains(strings.ToLower(u.Username), needle) {
			found = append(found, u)
		}
	}
	return found, nil
}

func (m *MockDB) FindUserExact(ctx context.Context, name string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.FullName, name) || strings.EqualFold(u.Username, name) {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (m *MockDB) CashBalance(ctx context.Context) (models.CashBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balance models.CashBalance
	for _, tx := range m.transactions {
		amount := tx.Amount
		if tx.OperationType == models.OpExpense {
			amount = -amount
		}
		if tx.PaymentType == models.PayCash {
			balance.Cash += amount
		} else {
			balance.Card += amount
		}
	}
	return balance, nil
}

func (m *MockDB) TransactionsByRange(ctx context.Context, from, to time.Time) ([]models.CashTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.CashTransaction
	for _, tx := range m.transactions {
		if inRange(tx.Date, from, to) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MockDB) TopSales(ctx context.Context, from, to time.Time, limit int) ([]models.ProductSale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group := make(map[string]*models.ProductSale)
	for _, mv := range m.moves {
		if mv.MoveType != "продажа" || !inRange(mv.Date, from, to) {
			continue
		}
		s, ok := group[mv.Product]
		if !ok {
			s = &models.ProductSale{Category: mv.Category, Name: mv.Product}
			group[mv.Product] = s
		}
		s.Qty += mv.Qty
		s.Total += mv.Total
		s.Checks++
	}

	sales := make([]models.ProductSale, 0, len(group))
	for _, s := range group {
		sales = append(sales, *s)
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Total != sales[j].Total {
			return sales[i].Total > sales[j].Total
		}
		return sales[i].Name < sales[j].Name
	})
	if limit > 0 && limit < len(sales) {
		sales = sales[:limit]
	}
	return sales, nil
}

func (m *MockDB) SalesTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error) {
	return m.moveTotals("продажа", from, to), nil
}

func (m *MockDB) PrizeTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error) {
	return m.moveTotals("выдача_приза", from, to), nil
}

func (m *MockDB) moveTotals(moveType string, from, to time.Time) models.StockTotals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var t models.StockTotals
	for _, mv := range m.moves {
		if mv.MoveType != moveType || !inRange(mv.Date, from, to) {
			continue
		}
		t.Count++
		t.Qty += mv.Qty
		t.Total += mv.Total
	}
	return t
}

func (m *MockDB) SalaryWriteoffs(ctx context.Context, date time.Time) ([]models.SalaryWriteoff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group := make(map[string]*models.SalaryWriteoff)
	for _, mv := range m.moves {
		if mv.MoveType != "списание" || mv.WriteoffType != "в счёт ЗП" || !sameDay(mv.Date, date) {
			continue
		}
		w, ok := group[mv.SalaryPerson]
		if !ok {
			w = &models.SalaryWriteoff{Person: mv.SalaryPerson}
			group[mv.SalaryPerson] = w
		}
		w.Amount += mv.Qty * mv.RetailPrice
		w.Items++
	}

	writeoffs := make([]models.SalaryWriteoff, 0, len(group))
	for _, w := range group {
		writeoffs = append(writeoffs, *w)
	}
	sort.Slice(writeoffs, func(i, j int) bool { return writeoffs[i].Person < writeoffs[j].Person })
	return writeoffs, nil
}

func (m *MockDB) BookingsInRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if inRange(b.EventDate, from, to) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].EventTime < out[j].EventTime
	})
	return out, nil
}

func (m *MockDB) BookingTotals(ctx context.Context, from, to time.Time) (models.BookingTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var t models.BookingTotals
	for _, b := range m.bookings {
		if !inRange(b.EventDate, from, to) {
			continue
		}
		t.Count++
		t.Revenue += b.TotalPrice
		t.Children += b.ChildCount
	}
	return t, nil
}

func (m *MockDB) ActionLog(ctx context.Context, limit int, userID int64) ([]models.ActionLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []models.ActionLogEntry
	for i, e := range m.log {
		if userID != 0 && m.logUserIDs[i] != userID {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockDB) ActionCountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int
	for i, e := range m.log {
		if m.logUserIDs[i] == userID && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) LastActionTime(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last time.Time
	for _, e := range m.log {
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return last, nil
}

func (m *MockDB) Counts(ctx context.Context) (models.StoreCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.StoreCounts{
		Bookings:   len(m.bookings),
		Products:   m.products,
		StockMoves: len(m.moves),
	}, nil
}

func (m *MockDB) PollOffset(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pollOffset, nil
}

func (m *MockDB) SetPollOffset(ctx context.Context, offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollOffset = offset
	return nil
}

func (m *MockDB) Path() string { return "" }

func (m *MockDB) Close() error { return nil }

func inRange(d, from, to time.Time) bool {
	day := truncate(d)
	return !day.Before(truncate(from)) && !day.After(truncate(to))
}

func sameDay(a, b time.Time) bool {
	return truncate(a).Equal(truncate(b))
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
