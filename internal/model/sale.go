package model

import "time"

// Sale statuses. There is no enforced transition graph: an authorized
// update may set any status. A sale persisted as completed marks the
// referenced vehicle Sold (see repository.SaleRepo); cancelling or
// deleting a completed sale does not revert the vehicle.
const (
	SalePending   = "pending"
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"
)

// SaleStatuses lists every valid sale status.
var SaleStatuses = []string{SalePending, SaleCompleted, SaleCancelled}

// SalePaymentMethods lists the payment methods accepted on a sale.
var SalePaymentMethods = []string{
	"cash", "bank_transfer", "pix", "financing", "credit_card", "debit_card",
}

// Customer is the buyer block embedded in a sale (JSON column).
type Customer struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Sale represents a record of the `sales` table. VehicleID may point at
// a vehicle that has since been deleted; Vehicle is populated on reads
// when the reference still resolves and left nil otherwise.
type Sale struct {
	ID            string      `json:"id"`
	VehicleID     string      `json:"vehicleId"`
	Vehicle       *VehicleRef `json:"vehicle"`
	SalePrice     float64     `json:"salePrice"`
	Customer      Customer    `json:"customer"`
	PaymentMethod string      `json:"paymentMethod"`
	Date          time.Time   `json:"date"`
	Notes         string      `json:"notes,omitempty"`
	Status        string      `json:"status"`
	Documents     []Document  `json:"documents"`
	CreatedBy     string      `json:"createdBy"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
