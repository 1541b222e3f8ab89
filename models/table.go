package models

const (
	TableFree     = "free"
	TableOccupied = "occupied"
	TableReserved = "reserved"
)

type Table struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Seats  int    `json:"seats"`
	Status string `json:"status"`
}
