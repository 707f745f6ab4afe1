package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionUserCreate   = "USER_CREATE"
	AuditActionClassCreate  = "CLASS_CREATE"
	AuditActionAttendance   = "ATTENDANCE_SAVE"
	AuditActionGradeEnter   = "GRADE_ENTER"
	AuditActionAssignment   = "ASSIGNMENT_CREATE"
	AuditActionAnnouncement = "ANNOUNCEMENT_CREATE"
	AuditActionEvent        = "EVENT_CREATE"
	AuditActionEnrollment   = "ENROLLMENT_CHANGE"
)

// AuditLog is an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
