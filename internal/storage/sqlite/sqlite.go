// Package sqlite reads the venue database the desktop application writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"uley/internal/models"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"

	moveSale       = "продажа"
	movePrize      = "выдача_приза"
	moveWriteoff   = "списание"
	writeoffSalary = "в счёт ЗП"
)

// DB is the sqlite-backed Storage implementation.
type DB struct {
	conn *sql.DB
	path string
}

// Open connects to the database file without creating schema; migrations
// own the schema (see cmd/migrate).
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The desktop app holds the write lock most of the day; wait for it.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &DB{conn: conn, path: path}, nil
}

func (db *DB) Path() string { return db.path }

func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) Recipients(ctx context.Context) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT chat_id FROM telegram_recipients`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindUsers folds case in Go: sqlite's LIKE is case-insensitive for ASCII
// only, and employee names here are Cyrillic.
func (db *DB) FindUsers(ctx context.Context, query string) ([]models.User, error) {
	users, err := db.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	var found []models.User
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), needle) ||
			strings.Contains(strings.ToLower(u.Username), needle) {
			found = append(found, u)
		}
	}
	return found, nil
}

func (db *DB) FindUserExact(ctx context.Context, name string) (*models.User, error) {
	users, err := db.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.FullName, name) || strings.EqualFold(u.Username, name) {
			return &u, nil
		}
	}
	return nil, nil
}

func (db *DB) allUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, COALESCE(full_name, ''), COALESCE(username, '') FROM users ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (db *DB) CashBalance(ctx context.Context) (models.CashBalance, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT payment_type,
		       SUM(CASE WHEN operation_type = 'income' THEN amount ELSE -amount END)
		FROM cash_transactions
		GROUP BY payment_type`)
	if err != nil {
		return models.CashBalance{}, fmt.Errorf("failed to query cash balance: %w", err)
	}
	defer rows.Close()

	var balance models.CashBalance
	for rows.Next() {
		var payType string
		var total sql.NullFloat64
		if err := rows.Scan(&payType, &total); err != nil {
			return models.CashBalance{}, fmt.Errorf("failed to scan balance: %w", err)
		}
		if payType == models.PayCash {
			balance.Cash = total.Float64
		} else {
			balance.Card += total.Float64
		}
	}
	return balance, rows.Err()
}

func (db *DB) TransactionsByRange(ctx context.Context, from, to time.Time) ([]models.CashTransaction, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, operation_type, payment_type, COALESCE(category, ''),
		       COALESCE(amount, 0), COALESCE(description, '')
		FROM cash_transactions
		WHERE date >= ? AND date <= ?
		ORDER BY date`,
		from.Format(dayLayout), to.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.CashTransaction
	for rows.Next() {
		var tx models.CashTransaction
		var day string
		if err := rows.Scan(&day, &tx.OperationType, &tx.PaymentType, &tx.Category, &tx.Amount, &tx.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Date, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("failed to parse transaction date %q: %w", day, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (db *DB) TopSales(ctx context.Context, from, to time.Time, limit int) ([]models.ProductSale, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(p.category, ''), p.name, SUM(m.qty), SUM(m.total), COUNT(*)
		FROM stock_moves m
		JOIN products p ON m.product_id = p.id
		WHERE m.move_type = ? AND m.date >= ? AND m.date <= ?
		GROUP BY p.category, p.name
		ORDER BY SUM(m.total) DESC
		LIMIT ?`,
		moveSale, from.Format(dayLayout), to.Format(dayLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sales: %w", err)
	}
	defer rows.Close()

	var sales []models.ProductSale
	for rows.Next() {
		var s models.ProductSale
		if err := rows.Scan(&s.Category, &s.Name, &s.Qty, &s.Total, &s.Checks); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (db *DB) SalesTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error) {
	return db.moveTotals(ctx, moveSale, from, to)
}

func (db *DB) PrizeTotals(ctx context.Context, from, to time.Time) (models.StockTotals, error) {
	return db.moveTotals(ctx, movePrize, from, to)
}

func (db *DB) moveTotals(ctx context.Context, moveType string, from, to time.Time) (models.StockTotals, error) {
	var t models.StockTotals
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(qty), 0), COALESCE(SUM(total), 0)
		FROM stock_moves
		WHERE move_type = ? AND date >= ? AND date <= ?`,
		moveType, from.Format(dayLayout), to.Format(dayLayout)).
		Scan(&t.Count, &t.Qty, &t.Total)
	if err != nil {
		return models.StockTotals{}, fmt.Errorf("failed to query %s totals: %w", moveType, err)
	}
	return t, nil
}

func (db *DB) SalaryWriteoffs(ctx context.Context, date time.Time) ([]models.SalaryWriteoff, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(m.salary_person, ''), SUM(m.qty * p.retail_price), COUNT(*)
		FROM stock_moves m
		JOIN products p ON m.product_id = p.id
		WHERE m.move_type = ? AND m.writeoff_type = ? AND m.date = ?
		GROUP BY m.salary_person`,
		moveWriteoff, writeoffSalary, date.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query salary writeoffs: %w", err)
	}
	defer rows.Close()

	var writeoffs []models.SalaryWriteoff
	for rows.Next() {
		var w models.SalaryWriteoff
		if err := rows.Scan(&w.Person, &w.Amount, &w.Items); err != nil {
			return nil, fmt.Errorf("failed to scan writeoff: %w", err)
		}
		writeoffs = append(writeoffs, w)
	}
	return writeoffs, rows.Err()
}

func (db *DB) BookingsInRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT event_date, COALESCE(event_time, ''), client_name,
		       COALESCE(room_name, ''), COALESCE(package_name, ''),
		       COALESCE(animator_hero, ''), COALESCE(child_count, 0),
		       COALESCE(phone, ''), COALESCE(age, 0),
		       COALESCE(total_price, 0), COALESCE(status, 'активен')
		FROM bookings
		WHERE event_date >= ? AND event_date <= ?
		ORDER BY event_date, event_time`,
		from.Format(dayLayout), to.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		var day string
		if err := rows.Scan(&day, &b.EventTime, &b.ClientName, &b.RoomName, &b.PackageName,
			&b.AnimatorHero, &b.ChildCount, &b.Phone, &b.Age, &b.TotalPrice, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.EventDate, err = time.Parse(dayLayout, day); err != nil {
			return nil, fmt.Errorf("failed to parse booking date %q: %w", day, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) BookingTotals(ctx context.Context, from, to time.Time) (models.BookingTotals, error) {
	var t models.BookingTotals
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0), COALESCE(SUM(child_count), 0)
		FROM bookings
		WHERE event_date >= ? AND event_date <= ?`,
		from.Format(dayLayout), to.Format(dayLayout)).
		Scan(&t.Count, &t.Revenue, &t.Children)
	if err != nil {
		return models.BookingTotals{}, fmt.Errorf("failed to query booking totals: %w", err)
	}
	return t, nil
}

func (db *DB) ActionLog(ctx context.Context, limit int, userID int64) ([]models.ActionLogEntry, error) {
	query := `
		SELECT l.timestamp, COALESCE(u.full_name, ''), COALESCE(u.username, ''),
		       l.action, l.table_name, COALESCE(l.row_id, 0),
		       COALESCE(l.old_data, ''), COALESCE(l.new_data, '')
		FROM user_actions_log l
		LEFT JOIN users u ON u.id = l.user_id`
	args := []any{}
	if userID != 0 {
		query += ` WHERE l.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY l.timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query action log: %w", err)
	}
	defer rows.Close()

	var entries []models.ActionLogEntry
	for rows.Next() {
		var e models.ActionLogEntry
		var ts string
		if err := rows.Scan(&ts, &e.FullName, &e.Username, &e.Action, &e.Table, &e.RowID, &e.OldData, &e.NewData); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if e.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse log timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *DB) ActionCountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_actions_log WHERE user_id = ? AND timestamp >= ?`,
		userID, since.Format(timeLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}

func (db *DB) LastActionTime(ctx context.Context) (time.Time, error) {
	var ts sql.NullString
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM user_actions_log`).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last action: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	last, err := time.Parse(timeLayout, ts.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last action %q: %w", ts.String, err)
	}
	return last, nil
}

func (db *DB) Counts(ctx context.Context) (models.StoreCounts, error) {
	var c models.StoreCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"bookings", &c.Bookings},
		{"products", &c.Products},
		{"stock_moves", &c.StockMoves},
	} {
		if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+q.table).Scan(q.dst); err != nil {
			return models.StoreCounts{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}

func (db *DB) PollOffset(ctx context.Context) (int, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM bot_state WHERE key = 'poll_offset'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read poll offset: %w", err)
	}
	offset, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt poll offset %q: %w", value, err)
	}
	return offset, nil
}

func (db *DB) SetPollOffset(ctx context.Context, offset int) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO bot_state (key, value) VALUES ('poll_offset', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(offset))
	if err != nil {
		return fmt.Errorf("failed to store poll offset: %w", err)
	}
	return nil
}
