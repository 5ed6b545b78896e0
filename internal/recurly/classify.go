package recurly

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/samber/lo"
)

// FieldError is one entry of an <errors> document
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Message string `json:"message"`
}

// TransactionError describes a declined or failed payment
type TransactionError struct {
	ErrorCode       string `json:"error_code,omitempty"`
	ErrorCategory   string `json:"error_category,omitempty"`
	MerchantMessage string `json:"merchant_message,omitempty"`
	CustomerMessage string `json:"customer_message,omitempty"`
}

// APIError is a non-acceptable response from the billing api
type APIError struct {
	StatusCode       int               `json:"status_code"`
	Symbol           string            `json:"symbol,omitempty"`
	Description      string            `json:"description,omitempty"`
	Details          string            `json:"details,omitempty"`
	Errors           []FieldError      `json:"errors,omitempty"`
	TransactionError *TransactionError `json:"transaction_error,omitempty"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "recurly: %d", e.StatusCode)
	if e.Symbol != "" {
		b.WriteString(" " + e.Symbol)
	}
	if e.Description != "" {
		b.WriteString(": " + e.Description)
	}
	if len(e.Errors) > 0 {
		msgs := lo.Map(e.Errors, func(fe FieldError, _ int) string {
			if fe.Field == "" {
				return fe.Message
			}
			return fe.Field + " " + fe.Message
		})
		b.WriteString(": " + strings.Join(msgs, "; "))
	}
	return b.String()
}

// Classify turns a transport result into an error.
// It returns nil when resp carries an acceptable status, passes through
// transport failures unchanged and returns a marked *APIError otherwise.
func Classify(err error, resp *httpclient.Response, acceptable ...int) error {
	if err != nil {
		httpErr, ok := httpclient.IsHTTPError(err)
		if !ok {
			return err
		}
		return newAPIError(httpErr.StatusCode, httpErr.Response)
	}

	if resp == nil {
		return ierr.NewError("no response from billing api").
			Mark(ierr.ErrSystem)
	}
	if lo.Contains(acceptable, resp.StatusCode) {
		return nil
	}
	return newAPIError(resp.StatusCode, resp.Body)
}

func newAPIError(status int, body []byte) error {
	apiErr := parseAPIError(status, body)

	return ierr.WithError(apiErr).
		WithHint(hintForStatus(status)).
		WithReportableDetails(map[string]any{
			"status": status,
			"symbol": apiErr.Symbol,
		}).
		Mark(markForStatus(status))
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	doc := etree.NewDocument()
	if len(body) == 0 || doc.ReadFromBytes(body) != nil || doc.Root() == nil {
		apiErr.Description = http.StatusText(status)
		return apiErr
	}

	root := doc.Root()
	switch root.Tag {
	case "error":
		apiErr.Symbol = xmlcodec.Text(root.SelectElement("symbol"))
		apiErr.Description = xmlcodec.Text(root.SelectElement("description"))
		apiErr.Details = xmlcodec.Text(root.SelectElement("details"))
	case "errors":
		for _, el := range root.ChildElements() {
			switch el.Tag {
			case "error":
				apiErr.Errors = append(apiErr.Errors, FieldError{
					Field:   el.SelectAttrValue("field", ""),
					Symbol:  el.SelectAttrValue("symbol", ""),
					Message: strings.TrimSpace(el.Text()),
				})
			case "transaction_error":
				apiErr.TransactionError = &TransactionError{
					ErrorCode:       xmlcodec.Text(el.SelectElement("error_code")),
					ErrorCategory:   xmlcodec.Text(el.SelectElement("error_category")),
					MerchantMessage: xmlcodec.Text(el.SelectElement("merchant_message")),
					CustomerMessage: xmlcodec.Text(el.SelectElement("customer_message")),
				}
			}
		}
		if apiErr.TransactionError != nil && apiErr.Description == "" {
			apiErr.Description = apiErr.TransactionError.CustomerMessage
		}
		if len(apiErr.Errors) > 0 && apiErr.Symbol == "" {
			apiErr.Symbol = apiErr.Errors[0].Symbol
		}
	default:
		apiErr.Description = http.StatusText(status)
	}

	return apiErr
}

func markForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return ierr.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ierr.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return ierr.ErrPermissionDenied
	case http.StatusConflict:
		return ierr.ErrAlreadyExists
	default:
		return ierr.ErrHTTPClient
	}
}

func hintForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "The requested resource does not exist"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "The billing api rejected the request"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "Check the api key and its permissions"
	case status == http.StatusConflict:
		return "The resource is in a conflicting state"
	case status >= 500:
		return "The billing api is unavailable, try again later"
	default:
		return "Unexpected response from the billing api"
	}
}

// AsAPIError extracts the *APIError carried by err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if ierr.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
