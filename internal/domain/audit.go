package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only trail entry for compliance and debugging.
// Period reopen/unlock and journal corrections are always audited.
type AuditLog struct {
	ID           string
	TenantID     string
	Actor        string // Who performed the action
	Action       AuditAction
	ResourceType string // journal, period, account, subledger, tenant
	ResourceID   string
	Reason       string // Mandatory for reversals, reopens, unlocks
	RequestID    string // Request ID for tracing
	BeforeState  JSON
	AfterState   JSON
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Journal actions
	AuditActionJournalCreate  AuditAction = "journal.create"
	AuditActionJournalPost    AuditAction = "journal.post"
	AuditActionJournalVoid    AuditAction = "journal.void"
	AuditActionJournalReverse AuditAction = "journal.reverse"

	// Period actions
	AuditActionPeriodCreate AuditAction = "period.create"
	AuditActionPeriodClose  AuditAction = "period.close"
	AuditActionPeriodReopen AuditAction = "period.reopen"
	AuditActionPeriodLock   AuditAction = "period.lock"
	AuditActionPeriodUnlock AuditAction = "period.unlock"

	// Account actions
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"

	// Subledger actions
	AuditActionPaymentApply AuditAction = "payment.apply"

	// Tenant actions
	AuditActionTenantCreate       AuditAction = "tenant.create"
	AuditActionTenantConfigUpdate AuditAction = "tenant.config_update"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	TenantID     string
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
