package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
)

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx API response into an error, keeping the
// code and message when the body is the standard error envelope. The body is
// consumed and closed.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned %d (body unreadable: %w)", service, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) != nil || env.Error == nil {
		return fmt.Errorf("%s returned %d: %s", service, resp.StatusCode, body)
	}

	code, msg := env.Error.Code, env.Error.Message
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(msg)
	case http.StatusUnauthorized:
		if code == "LOGIN_REQUIRED" {
			return apperrors.NotLoggedIn()
		}
		return apperrors.Unauthorized(msg)
	case http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case http.StatusNotFound:
		return &apperrors.AppError{Code: code, Message: msg, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	case http.StatusConflict:
		return apperrors.Conflict(msg)
	case http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(msg)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s server error %d (%s): %s", service, resp.StatusCode, code, msg)
	}
	return &apperrors.AppError{Code: code, Message: msg, Status: resp.StatusCode}
}
