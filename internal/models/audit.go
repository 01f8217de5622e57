package models

import (
	"encoding/json"
	"time"
)

// Audit action names recorded by the console trail.
const (
	AuditActionLogin          = "console.login"
	AuditActionLogout         = "console.logout"
	AuditActionPasswordChange = "console.password_change"
	AuditActionScreenSubmit   = "console.screen_submit"
	AuditActionScreenDelete   = "console.screen_delete"
	AuditActionFileDownload   = "console.file_download"
	AuditActionScreenExport   = "console.screen_export"
)

// AuditLog is one console action trail entry persisted to Postgres.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	Username   *string         `db:"username" json:"username,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
