package models

import "fmt"

// Session is the acting staff member, passed explicitly to every
// operation that needs identity.
type Session struct {
	StaffID   int64  `json:"staff_id"`
	StaffName string `json:"staff_name"`
	Role      string `json:"role"`
	TableID   int64  `json:"table_id"`
}

// CartKey identifies the working cart of this staff member at this table.
func (s Session) CartKey() string {
	return fmt.Sprintf("staff:%d:table:%d", s.StaffID, s.TableID)
}

func (s Session) IsManager() bool {
	return s.Role == RoleManager
}
