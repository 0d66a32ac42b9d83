package api

import "time"

// Device lifecycle states as reported by the service. The client never
// advances these itself.
const (
	DeviceStatusActive        = "active"
	DeviceStatusPendingDelete = "pending_delete"
	DeviceStatusDeactivated   = "deactivated"
	DeviceStatusDeleted       = "deleted"
)

// Subscription states.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	TelegramID       *int64     `json:"telegram_id,omitempty"`
	TelegramUsername *string    `json:"telegram_username,omitempty"`
	IPAddress        *string    `json:"ip_address,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

type Subscription struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Device struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Status            string       `json:"status"`
	AccessURL         string       `json:"access_url"`
	CreatedAt         *time.Time   `json:"created_at,omitempty"`
	ScheduledDeleteAt *time.Time   `json:"scheduled_delete_at,omitempty"`
	Subscription      Subscription `json:"subscription"`
}

type LoginRequest struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
	OTP   string `json:"otp,omitempty"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	User      User       `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type RegisterRequest struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}

type RegisterResponse struct {
	User      User   `json:"user"`
	MFASecret string `json:"mfa_secret"`
	QRURL     string `json:"qr_url"`
}

type DevicesResponse struct {
	Devices []Device `json:"devices"`
}

type AddDeviceResponse struct {
	Device       Device       `json:"device"`
	Subscription Subscription `json:"subscription"`
}

type PaymentRequest struct {
	DeviceID int64 `json:"device_id"`
	Months   int   `json:"months"`
}

type PaymentResponse struct {
	PaymentURL string `json:"payment_url"`
}

type DeviceKeyResponse struct {
	AccessURL string `json:"access_url"`
}

type Message struct {
	Message string `json:"message"`
}

// ErrorResponse is the structured failure body returned on non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
