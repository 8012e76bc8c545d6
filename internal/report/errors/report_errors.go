package reporterrors

import (
	"net/http"

	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeIdentityUnresolved,
		"Employee could not be resolved in any data source",
		http.StatusNotFound,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid report period",
		http.StatusBadRequest,
	)
	ErrNoRecipient = apperror.New(
		apperror.CodeInvalidState,
		"Employee has no email address on record",
		http.StatusConflict,
	)
	ErrMailerDisabled = apperror.New(
		apperror.CodeInvalidState,
		"Email delivery is not configured",
		http.StatusConflict,
	)
	ErrDirectoryUnavailable = apperror.New(
		apperror.CodeUpstreamUnavailable,
		"Employee directory is unavailable",
		http.StatusBadGateway,
	)
)
