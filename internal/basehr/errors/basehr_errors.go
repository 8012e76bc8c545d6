package basehrerrors

import (
	"net/http"

	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"
)

var (
	ErrUpstreamUnavailable = apperror.New(
		apperror.CodeUpstreamUnavailable,
		"Upstream HR service is unavailable",
		http.StatusBadGateway,
	)
	ErrUpstreamRejected = apperror.New(
		apperror.CodeUpstreamUnavailable,
		"Upstream HR service rejected the request",
		http.StatusBadGateway,
	)
	ErrMalformedPayload = apperror.New(
		apperror.CodeUpstreamUnavailable,
		"Upstream HR service returned a malformed payload",
		http.StatusBadGateway,
	)
)
