package model

import "time"

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction statuses reuse the sale status values but default to
// pending on creation.
var TransactionStatuses = []string{SalePending, SaleCompleted, SaleCancelled}

// TransactionTypes lists the valid transaction types.
var TransactionTypes = []string{TransactionIncome, TransactionExpense}

// TransactionCategories lists the bookkeeping categories.
var TransactionCategories = []string{
	"food", "transport", "health", "education", "entertainment", "other",
}

// TransactionPaymentMethods lists the payment methods accepted on a
// transaction. The set differs from the one accepted on sales.
var TransactionPaymentMethods = []string{
	"cash", "credit_card", "debit_card", "bank_transfer", "pix", "check", "other",
}

// Transaction represents a record of the `transactions` table. The
// vehicle reference is optional and, like on sales, may dangle after the
// vehicle is deleted.
type Transaction struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Category      string      `json:"category"`
	Description   string      `json:"description"`
	Amount        float64     `json:"amount"`
	Date          time.Time   `json:"date"`
	PaymentMethod string      `json:"paymentMethod"`
	Status        string      `json:"status"`
	VehicleID     string      `json:"vehicleId,omitempty"`
	Vehicle       *VehicleRef `json:"vehicle"`
	Attachments   []Document  `json:"attachments"`
	Notes         string      `json:"notes,omitempty"`
	CreatedBy     string      `json:"createdBy"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Contains reports whether v is a member of set. Validation uses it to
// check enum fields.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// TransactionSummary carries the aggregate totals returned alongside a
// transaction listing.
type TransactionSummary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// ReportRow is one aggregation bucket of the financial report: totals
// per (type, category, year, month).
type ReportRow struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
