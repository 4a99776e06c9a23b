package handler

import (
	"errors"
	"net/http"

	"airport-vms/internal/adapter/http/dto"
	"airport-vms/pkg/apperror"
)

// bindError maps a ShouldBindJSON failure to an AppError.
func bindError(err error) *apperror.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.New("APP_001", "Request body too large", http.StatusRequestEntityTooLarge)
	}
	if fields := dto.FieldErrors(err); fields != nil {
		return apperror.Validation("Invalid request", fields)
	}
	return apperror.Validation("Malformed JSON body", nil)
}
