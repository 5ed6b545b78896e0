package errors

// ErrorResponse is the JSON shape the CLI prints when a command fails
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Hints         []string       `json:"hints,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds an ErrorResponse from err
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display:       err.Error(),
			InternalError: codeOf(err),
			Hints:         Hints(err),
		},
	}
}

func codeOf(err error) string {
	for e := range statusCodeMap {
		if Is(err, e) {
			if ie, ok := e.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ""
}
