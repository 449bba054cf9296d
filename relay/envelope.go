package relay

import "encoding/json"

// Response is the normalized response envelope every relayed call resolves
// to. Transport failures and upstream business failures share this shape;
// callers only ever branch on Success and Code, never on how the failure
// happened.
type Response struct {
	Success bool
	Message string
	Code    int
	Data    json.RawMessage
}

// rawEnvelope accepts both historical upstream envelope variants:
// {status, message, code, data} and {success, message, statusCode, data}.
// They are treated as equivalent; nothing past this file sees both forms.
type rawEnvelope struct {
	Status     *bool           `json:"status"`
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Code       *int            `json:"code"`
	StatusCode *int            `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

// decodeEnvelope folds an upstream body and its HTTP status into one
// Response. Fields missing from the body fall back to the HTTP status.
func decodeEnvelope(httpStatus int, body []byte) Response {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{
			Success: false,
			Message: "unexpected response from the server",
			Code:    normalizeCode(httpStatus),
		}
	}

	resp := Response{
		Message: raw.Message,
		Data:    raw.Data,
	}

	switch {
	case raw.Status != nil:
		resp.Success = *raw.Status
	case raw.Success != nil:
		resp.Success = *raw.Success
	default:
		resp.Success = httpStatus < 400
	}

	switch {
	case raw.Code != nil:
		resp.Code = *raw.Code
	case raw.StatusCode != nil:
		resp.Code = *raw.StatusCode
	default:
		resp.Code = normalizeCode(httpStatus)
	}

	return resp
}

func normalizeCode(httpStatus int) int {
	if httpStatus == 0 {
		return 500
	}
	return httpStatus
}

// MarshalJSON always emits the canonical {success, message, code, data}
// form toward the browser.
func (r Response) MarshalJSON() ([]byte, error) {
	type out struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Code    int             `json:"code"`
		Data    json.RawMessage `json:"data,omitempty"`
	}
	return json.Marshal(out{
		Success: r.Success,
		Message: r.Message,
		Code:    r.Code,
		Data:    r.Data,
	})
}
