package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

const maxErrorBody = 1 << 20

// remoteError is the structured error body returned by endpoints that speak
// the same envelope this service does.
type remoteError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError translates a non-2xx response into an AppError,
// preserving code and message when the body carries a structured error.
// The body is fully consumed and closed.
func ParseResponseError(resp *http.Response, endpoint string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", endpoint, resp.StatusCode, err)
	}

	var remote remoteError
	if json.Unmarshal(body, &remote) == nil && remote.Error != nil {
		return mapRemoteError(resp.StatusCode, remote.Error.Code, remote.Error.Message, endpoint)
	}

	return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))
}

func mapRemoteError(status int, code, message, endpoint string) error {
	qualified := fmt.Sprintf("%s: %s", endpoint, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(endpoint, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(code, qualified)
	case status == http.StatusUnprocessableEntity:
		return apperrors.PaymentDeclined(qualified)
	case status == http.StatusGatewayTimeout:
		return apperrors.ProcessorTimeout(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", endpoint, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx response.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
