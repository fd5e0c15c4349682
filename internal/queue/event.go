// Package queue defines message payloads exchanged over the message broker.
package queue

// SaleCompletedEvent is published when a sale is persisted with the
// completed status. It carries enough information for downstream
// consumers to log or reconcile without querying the primary database.
type SaleCompletedEvent struct {
	SaleID      string  `json:"sale_id"`
	VehicleID   string  `json:"vehicle_id"`
	SalePrice   float64 `json:"sale_price"`
	Customer    string  `json:"customer"`
	CompletedAt string  `json:"completed_at"`
}
