package staff

import "time"

// WorkType decides which days are working days by default. Weekday staff rest
// on Saturday and Sunday; shift staff only rest on days the shift schedule or
// the holiday calendars declare.
type WorkType string

const (
	WorkTypeWeekday WorkType = "weekday"
	WorkTypeShift   WorkType = "shift"
)

type Role string

const (
	RoleStaff    Role = "staff"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

type Staff struct {
	ID        string
	Name      string
	Email     string
	WorkType  WorkType
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
