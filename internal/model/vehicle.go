package model

import "time"

// Vehicle statuses stored in the `vehicles.status` column.
const (
	VehicleAvailable     = "Available"
	VehicleSold          = "Sold"
	VehicleInMaintenance = "InMaintenance"
)

// VehicleStatuses lists every valid vehicle status, used by validation.
var VehicleStatuses = []string{VehicleAvailable, VehicleSold, VehicleInMaintenance}

// VehicleDetails holds the optional descriptive block of a vehicle.
// Persisted as a JSON column; a vehicle may have no details at all.
type VehicleDetails struct {
	KM           *int     `json:"km,omitempty"`
	Fuel         string   `json:"fuel,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// Photo is one entry of a vehicle's ordered photo list. At most one photo
// of a vehicle carries Main=true after any photo mutation.
type Photo struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Main bool   `json:"main"`
}

// Document is an attached document reference (metadata only, the file
// itself lives wherever the URL points).
type Document struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Vehicle represents a record of the `vehicles` table. Photos, documents
// and details are embedded JSON columns. CreatedBy is set once at
// creation and never reassigned; it exists only for the ownership check.
type Vehicle struct {
	ID        string          `json:"id"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Price     float64         `json:"price"`
	Color     string          `json:"color"`
	Status    string          `json:"status"`
	Details   *VehicleDetails `json:"details,omitempty"`
	Photos    []Photo         `json:"photos"`
	Documents []Document      `json:"documents"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// VehicleRef is the short vehicle summary embedded in sale and
// transaction responses. A nil VehicleRef means the referenced vehicle
// no longer exists; readers must tolerate that.
type VehicleRef struct {
	ID    string `json:"id"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}
