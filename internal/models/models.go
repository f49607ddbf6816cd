package models

import "time"

// Operation types of a cash ledger row
const (
	OpIncome  = "income"
	OpExpense = "expense"
)

// Payment types of a cash ledger row
const (
	PayCash = "cash"
	PayCard = "card"
)

// CashTransaction is one row of the main cash ledger.
type CashTransaction struct {
	Date          time.Time
	OperationType string // income / expense
	PaymentType   string // cash / card
	Category      string
	Amount        float64
	Description   string
}

// CashBalance is the current main-register balance split by payment type.
type CashBalance struct {
	Cash float64
	Card float64
}

// ProductSale is an aggregated sales row for one product.
type ProductSale struct {
	Category string
	Name     string
	Qty      float64
	Total    float64
	Checks   int
}

// StockTotals aggregates stock moves of one kind over a period.
type StockTotals struct {
	Count int     // number of moves (checks)
	Qty   float64 // total units moved
	Total float64 // total money (or tickets for prizes)
}

// Booking is a banquet reservation.
type Booking struct {
	EventDate    time.Time
	EventTime    string
	ClientName   string
	RoomName     string
	PackageName  string
	AnimatorHero string
	ChildCount   int
	Phone        string
	Age          int
	TotalPrice   float64
	Status       string // активен / отложен / отменен
}

// BookingTotals aggregates bookings over a period.
type BookingTotals struct {
	Count    int
	Revenue  float64
	Children int
}

// SalaryWriteoff is a per-employee total of goods written off against salary.
type SalaryWriteoff struct {
	Person string
	Amount float64
	Items  int
}

// User is an employee record.
type User struct {
	ID       int64
	FullName string
	Username string
}

// ActionLogEntry is one immutable row of the user action journal.
// OldData and NewData carry the raw JSON payloads written by the desktop app.
type ActionLogEntry struct {
	Timestamp time.Time
	FullName  string
	Username  string
	Action    string // create / update / delete / use
	Table     string
	RowID     int64
	OldData   string
	NewData   string
}

// StoreCounts are row counts shown in the status snapshot.
type StoreCounts struct {
	Bookings   int
	Products   int
	StockMoves int
}
