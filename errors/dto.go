package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorResponse is the body written for every failed request. Detail mirrors
// the field browser clients already read.
type ErrorResponse struct {
	Detail  string         `json:"detail"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the response body for err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Detail:  DisplayMessage(err),
		Code:    Sentinel(err).Code,
		Details: SafeDetails(err),
	}
}

// DisplayMessage returns the first non-empty hint, falling back to the
// sentinel message.
func DisplayMessage(err error) string {
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return Sentinel(err).Message
}

// SafeDetails collects the details attached with WithReportableDetails.
func SafeDetails(err error) map[string]any {
	details := make(map[string]any)

	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok {
				continue
			}
			var jsonDetails map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &jsonDetails); err == nil {
				for k, v := range jsonDetails {
					details[k] = v
				}
			}
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
