package models

// BookingStatus is the approval state of a booking.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

const (
	// DefaultFrom смещение первой страницы
	DefaultFrom = 0

	// DefaultPageSize размер страницы по умолчанию
	DefaultPageSize = 20

	// DateTimeLayout формат дат в JSON
	DateTimeLayout = "2006-01-02T15:04:05"
)
