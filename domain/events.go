package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// One-time code events
	OTPRequestEvent        AuditEventType = "OTP_REQUESTED"
	OTPRejectedEvent       AuditEventType = "OTP_REJECTED"
	OTPDeliveryFailedEvent AuditEventType = "OTP_DELIVERY_FAILED"
	OTPVerifyEvent         AuditEventType = "OTP_VERIFIED"
	OTPFailureEvent        AuditEventType = "OTP_VERIFICATION_FAILED"

	// Authentication events
	IdentityCreatedEvent  AuditEventType = "IDENTITY_CREATED"
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"
	UserLogoutEvent       AuditEventType = "USER_LOGOUT"
	LogoutAllEvent        AuditEventType = "LOGOUT_ALL"
	PasswordChangedEvent  AuditEventType = "PASSWORD_CHANGED"

	// Tenant events
	TenantCreatedEvent      AuditEventType = "TENANT_CREATED"
	TenantDeletedEvent      AuditEventType = "TENANT_DELETED"
	SubscriptionChangeEvent AuditEventType = "SUBSCRIPTION_CHANGED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType  AuditEventType         `json:"event_type"`
	IdentityID string                 `json:"identity_id,omitempty"`
	TenantID   string                 `json:"tenant_id,omitempty"`
	Email      string                 `json:"email,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg   string                 `json:"error_msg,omitempty"`
	Success    bool                   `json:"success"`
}

// AuditLogger defines operations for audit logging
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithIdentity sets the identity and its tenant
func (e *AuditEvent) WithIdentity(identity *Identity) *AuditEvent {
	if identity != nil {
		e.IdentityID = identity.ID
		e.TenantID = identity.TenantID()
		if e.Email == "" {
			e.Email = identity.Email
		}
	}
	return e
}

// WithTenant sets the tenant id
func (e *AuditEvent) WithTenant(tenantID string) *AuditEvent {
	e.TenantID = tenantID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
