package service

import (
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
)

const (
	userNotFoundMessage    = "User id=%d not found"
	itemNotFoundMessage    = "Item id=%d not found"
	bookingNotFoundMessage = "Booking id=%d not found"
	requestNotFoundMessage = "Request id=%d not found"
	notSupportedMessage    = "Operation is not supported"
)

// notFoundOr maps a missing row to a domain not-found error and passes
// any other error through.
func notFoundOr(err error, format string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFoundf(format, id)
	}
	return err
}
