package domain

import "time"

type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// Valid reports whether t is one of the known toast types.
func (t ToastType) Valid() bool {
	switch t {
	case ToastSuccess, ToastError, ToastWarning, ToastInfo:
		return true
	}
	return false
}

// ToastTypeForStatus maps a status code to the severity shown to the user.
func ToastTypeForStatus(status int) ToastType {
	switch {
	case status >= 500:
		return ToastError
	case status >= 400:
		return ToastWarning
	default:
		return ToastInfo
	}
}

// Toast is a transient user-facing notification.
// A zero Duration means the toast stays until it is removed.
type Toast struct {
	ID       int64         `json:"id"`
	Message  string        `json:"message"`
	Type     ToastType     `json:"type"`
	Duration time.Duration `json:"duration"`
}
