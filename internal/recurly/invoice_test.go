package recurly

import (
	"context"
	"errors"
	"net/http"
	"testing"

	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/httpclient"
	"github.com/flexprice/recurly-client/internal/testutil"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type InvoiceSuite struct {
	suite.Suite
	ctx       context.Context
	transport *testutil.MockHTTPClient
	client    *Client
}

func TestInvoiceSuite(t *testing.T) {
	suite.Run(t, new(InvoiceSuite))
}

func (s *InvoiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.transport = testutil.NewMockHTTPClient()
	s.client = newTestClient(s.T(), s.transport)
}

// loaded returns invoice 1010 as the api would return it
func (s *InvoiceSuite) loaded() *Invoice {
	p, err := xmlcodec.Decode([]byte(testutil.InvoiceXML(testBase, "1010", "open")))
	s.Require().NoError(err)
	inv := s.client.NewInvoice()
	s.Require().NoError(inv.Merge(p))
	return inv
}

func (s *InvoiceSuite) TestMerge_FullDocument() {
	inv := s.loaded()

	s.Equal(testBase+"invoices/1010", inv.Href)
	s.Equal("1010", inv.InvoiceNumber)
	s.Equal(InvoiceStateOpen, inv.State)
	s.Equal(int64(1088), inv.TotalInCents)
	s.Equal(30, inv.NetTerms)
	s.Equal("USD", inv.Currency)
	s.Empty(inv.PONumber)
	s.Nil(inv.ClosedAt)
	s.Require().NotNil(inv.CreatedAt)
	s.Equal(2024, inv.CreatedAt.Year())

	s.Equal(testBase+"accounts/acme", inv.Link("account"))
	s.Equal(testBase+"invoices/1010/subscriptions", inv.Link("subscriptions"))
	s.True(inv.HasAction("refund"))
	s.Equal("PUT", inv.Actions["mark_failed"].Method)

	s.Require().Len(inv.LineItems, 1)
	s.Equal("Gold plan", inv.LineItems[0].Description)
	s.Equal(int64(1000), inv.LineItems[0].UnitAmountInCents)
	s.Require().Len(inv.Transactions, 1)
	s.True(inv.Transactions[0].Refundable)

	s.True(decimal.RequireFromString("10.88").Equal(inv.Total()))
	s.True(decimal.RequireFromString("10.00").Equal(inv.Subtotal()))
	s.True(decimal.RequireFromString("0.88").Equal(inv.Tax()))
	s.True(decimal.RequireFromString("10.88").Equal(inv.AmountRemaining()))
	s.Equal("invoice 1010 (open, $10.88)", inv.String())
}

func (s *InvoiceSuite) TestMerge_PartialAndNil() {
	inv := s.loaded()
	inv.PONumber = "PO-1"

	p, err := xmlcodec.Decode([]byte(`<invoice><state>paid</state><po_number nil="nil"></po_number></invoice>`))
	s.Require().NoError(err)
	s.Require().NoError(inv.Merge(p))

	s.Equal(InvoiceStatePaid, inv.State)
	s.Empty(inv.PONumber)
	// untouched fields survive
	s.Equal("1010", inv.InvoiceNumber)
	s.Equal(int64(1088), inv.TotalInCents)
	s.True(inv.HasAction("refund"))
}

func (s *InvoiceSuite) TestMerge_FailureLeavesInvoiceUnchanged() {
	inv := s.loaded()

	p, err := xmlcodec.Decode([]byte(`<invoice><state>paid</state><total_in_cents>abc</total_in_cents></invoice>`))
	s.Require().NoError(err)
	s.Error(inv.Merge(p))

	s.Equal(InvoiceStateOpen, inv.State)
	s.Equal(int64(1088), inv.TotalInCents)
}

func (s *InvoiceSuite) TestInvoiceFields() {
	fields := InvoiceFields()
	s.Len(fields, 29)
	for _, name := range []string{"account", "invoice_number", "state", "line_items", "transactions", "vat_number"} {
		s.Contains(fields, name)
	}
}

func (s *InvoiceSuite) TestRefund_WithoutIdentifierFailsBeforeIO() {
	transport := new(testutil.MockTransport)
	client := newTestClient(s.T(), transport)
	inv := client.NewInvoice()

	result, err := inv.Refund(s.ctx, nil)

	s.Nil(result)
	s.ErrorIs(err, ErrMissingInvoiceNumber)
	s.True(ierr.IsInvalidOperation(err))
	s.Contains(err.Error(), "cannot refund an invoice")
	transport.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything)
}

func (s *InvoiceSuite) TestMark_WithoutIdentifierFailsBeforeIO() {
	transport := new(testutil.MockTransport)
	client := newTestClient(s.T(), transport)

	_, err := client.NewInvoice().MarkSuccessful(s.ctx)
	s.ErrorIs(err, ErrMissingInvoiceNumber)

	_, err = client.NewInvoice().MarkFailed(s.ctx)
	s.ErrorIs(err, ErrMissingInvoiceNumber)

	transport.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything)
}

func (s *InvoiceSuite) TestActions_FallbackURIs() {
	tests := []struct {
		name   string
		method string
		call   func(inv *Invoice) (*Invoice, error)
		uri    string
		status int
	}{
		{
			name:   "refund",
			method: http.MethodPost,
			call:   func(inv *Invoice) (*Invoice, error) { return inv.Refund(s.ctx, nil) },
			uri:    testBase + "invoices/1010/refund",
			status: http.StatusCreated,
		},
		{
			name:   "mark successful",
			method: http.MethodPut,
			call:   func(inv *Invoice) (*Invoice, error) { return inv.MarkSuccessful(s.ctx) },
			uri:    testBase + "invoices/1010/mark_successful",
			status: http.StatusOK,
		},
		{
			name:   "mark failed",
			method: http.MethodPut,
			call:   func(inv *Invoice) (*Invoice, error) { return inv.MarkFailed(s.ctx) },
			uri:    testBase + "invoices/1010/mark_failed",
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			transport := new(testutil.MockTransport)
			transport.On("Send", mock.Anything, mock.MatchedBy(func(req *httpclient.Request) bool {
				return req.Method == tt.method && req.URL == tt.uri
			})).Return(&httpclient.Response{StatusCode: tt.status, Body: []byte(`<invoice><state>paid</state></invoice>`)}, nil).Once()

			inv := newTestClient(s.T(), transport).NewInvoice()
			inv.InvoiceNumber = "1010"

			result, err := tt.call(inv)
			s.Require().NoError(err)
			s.Same(inv, result)
			s.Equal(InvoiceStatePaid, inv.State)
			transport.AssertExpectations(s.T())
		})
	}
}

func (s *InvoiceSuite) TestActions_PreferActionLinks() {
	inv := s.loaded()
	inv.Actions["refund"] = xmlcodec.Action{Name: "refund", Href: testBase + "custom/refund", Method: "POST"}

	s.transport.RegisterXML(http.MethodPost, "custom/refund", http.StatusCreated, `<invoice><state>open</state></invoice>`)

	_, err := inv.Refund(s.ctx, nil)
	s.Require().NoError(err)

	reqs := s.transport.Requests()
	s.Require().Len(reqs, 1)
	s.Equal(testBase+"custom/refund", reqs[0].URL)
}

func (s *InvoiceSuite) TestRefund_MergesCreatedInvoice() {
	inv := s.loaded()
	s.transport.RegisterXML(http.MethodPost, "invoices/1010/refund", http.StatusCreated,
		`<invoice><state>refunded</state></invoice>`)

	amount := int64(500)
	result, err := inv.Refund(s.ctx, &RefundOptions{
		AmountInCents: &amount,
		RefundMethod:  RefundMethodCreditFirst,
	})
	s.Require().NoError(err)
	s.Same(inv, result)
	s.Equal(InvoiceState("refunded"), inv.State)

	reqs := s.transport.Requests()
	s.Require().Len(reqs, 1)
	s.Equal(http.MethodPost, reqs[0].Method)
	s.Contains(string(reqs[0].Body), "<invoice><amount_in_cents>500</amount_in_cents><refund_method>credit_first</refund_method></invoice>")

	// merging the same payload again is idempotent
	p, err := xmlcodec.Decode([]byte(`<invoice><state>refunded</state></invoice>`))
	s.Require().NoError(err)
	s.Require().NoError(inv.Merge(p))
	s.Equal(InvoiceState("refunded"), inv.State)
}

func (s *InvoiceSuite) TestRefund_NilOptionsSendsEmptyInvoice() {
	inv := s.loaded()
	s.transport.RegisterXML(http.MethodPost, "invoices/1010/refund", http.StatusCreated, `<invoice/>`)

	_, err := inv.Refund(s.ctx, nil)
	s.Require().NoError(err)

	s.Contains(string(s.transport.Requests()[0].Body), "<invoice></invoice>")
}

func (s *InvoiceSuite) TestRefund_RejectedLeavesInvoiceUnchanged() {
	inv := s.loaded()
	s.transport.RegisterXML(http.MethodPost, "invoices/1010/refund", http.StatusUnprocessableEntity,
		testutil.ValidationErrorXML("invoice.amount_in_cents", "too_big", "must be less than or equal to 1088"))

	amount := int64(5000)
	result, err := inv.Refund(s.ctx, &RefundOptions{AmountInCents: &amount})
	s.Require().Error(err)
	s.Nil(result)

	apiErr, ok := AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnprocessableEntity, apiErr.StatusCode)
	s.Equal("too_big", apiErr.Symbol)
	s.True(ierr.IsValidation(err))

	s.Equal(InvoiceStateOpen, inv.State)
	s.Equal(int64(1088), inv.TotalInCents)
}

func (s *InvoiceSuite) TestRefund_InvalidOptionsFailBeforeIO() {
	transport := new(testutil.MockTransport)
	inv := newTestClient(s.T(), transport).NewInvoice()
	inv.InvoiceNumber = "1010"

	_, err := inv.Refund(s.ctx, &RefundOptions{RefundMethod: "everything"})
	s.True(ierr.IsValidation(err))
	transport.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything)
}

func (s *InvoiceSuite) TestMarkSuccessful_UnexpectedStatusIsClassified() {
	inv := s.loaded()
	// 201 is not acceptable for a mark action
	s.transport.RegisterXML(http.MethodPut, "invoices/1010/mark_successful", http.StatusCreated, `<invoice><state>paid</state></invoice>`)

	_, err := inv.MarkSuccessful(s.ctx)
	apiErr, ok := AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusCreated, apiErr.StatusCode)
	s.Equal(InvoiceStateOpen, inv.State)
}

func (s *InvoiceSuite) TestMarkFailed_TransportErrorPassesThrough() {
	inv := s.loaded()
	transportErr := errors.New("connection reset")
	s.transport.RegisterResponse(http.MethodPut, "invoices/1010/mark_failed", testutil.MockResponse{Err: transportErr})

	_, err := inv.MarkFailed(s.ctx)
	s.ErrorIs(err, transportErr)
	_, ok := AsAPIError(err)
	s.False(ok)
}

func (s *InvoiceSuite) TestFetchPDF() {
	s.Run("no href fails before io", func() {
		transport := new(testutil.MockTransport)
		_, err := newTestClient(s.T(), transport).NewInvoice().FetchPDF(s.ctx)
		s.ErrorIs(err, ErrMissingHref)
		s.Contains(err.Error(), "href")
		transport.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything)
	})

	s.Run("returns raw bytes", func() {
		s.SetupTest()
		inv := s.loaded()
		s.transport.RegisterResponse(http.MethodGet, "invoices/1010", testutil.MockResponse{
			StatusCode: http.StatusOK,
			Body:       testutil.PDFBytes,
		})

		pdf, err := inv.FetchPDF(s.ctx)
		s.Require().NoError(err)
		s.Equal(testutil.PDFBytes, pdf)

		req := s.transport.Requests()[0]
		s.Equal(httpclient.ContentTypePDF, req.Headers[httpclient.HeaderAccept])
	})

	s.Run("404 is not_found", func() {
		s.SetupTest()
		inv := s.loaded()
		s.transport.RegisterXML(http.MethodGet, "invoices/1010", http.StatusNotFound, `<error><symbol>not_found</symbol></error>`)

		_, err := inv.FetchPDF(s.ctx)
		s.Require().Error(err)
		s.Equal("not_found", err.Error())
		s.True(ierr.IsNotFound(err))
	})

	s.Run("other statuses are not classified", func() {
		s.SetupTest()
		inv := s.loaded()
		s.transport.RegisterXML(http.MethodGet, "invoices/1010", http.StatusInternalServerError, `oops`)

		_, err := inv.FetchPDF(s.ctx)
		httpErr, ok := httpclient.IsHTTPError(err)
		s.Require().True(ok)
		s.Equal(http.StatusInternalServerError, httpErr.StatusCode)
		_, ok = AsAPIError(err)
		s.False(ok)
	})
}

func (s *InvoiceSuite) TestFetchPDF_CachedUntilInvoiceChanges() {
	inv := s.loaded()
	s.transport.RegisterResponse(http.MethodGet, "invoices/1010", testutil.MockResponse{StatusCode: http.StatusOK, Body: testutil.PDFBytes})
	s.transport.RegisterXML(http.MethodPut, "invoices/1010/mark_successful", http.StatusOK, `<invoice><state>paid</state></invoice>`)

	_, err := inv.FetchPDF(s.ctx)
	s.Require().NoError(err)
	_, err = inv.FetchPDF(s.ctx)
	s.Require().NoError(err)
	s.Len(s.transport.Requests(), 1)

	_, err = inv.MarkSuccessful(s.ctx)
	s.Require().NoError(err)

	_, err = inv.FetchPDF(s.ctx)
	s.Require().NoError(err)

	gets := lo.Filter(s.transport.Requests(), func(r *httpclient.Request, _ int) bool { return r.Method == http.MethodGet })
	s.Len(gets, 2)
}

func (s *InvoiceSuite) TestFetchAccount() {
	s.Run("no account link fails before io", func() {
		transport := new(testutil.MockTransport)
		inv := newTestClient(s.T(), transport).NewInvoice()
		inv.InvoiceNumber = "1010"

		acct, err := inv.FetchAccount(s.ctx)
		s.Nil(acct)
		s.ErrorIs(err, ErrNoAccountResource)
		s.Equal("No account resource available", err.Error())
		transport.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything)
	})

	s.Run("fetches linked account", func() {
		s.SetupTest()
		inv := s.loaded()
		s.transport.RegisterXML(http.MethodGet, "accounts/acme", http.StatusOK, testutil.AccountXML(testBase, "acme"))

		acct, err := inv.FetchAccount(s.ctx)
		s.Require().NoError(err)
		s.Equal("acme", acct.AccountCode)
		s.Equal(testBase+"accounts/acme", acct.Href)
		s.Require().NotNil(acct.Address)
		s.Equal("San Francisco", acct.Address.City)
		s.True(acct.HasLiveSubscription)
	})

	s.Run("account errors are classified", func() {
		s.SetupTest()
		inv := s.loaded()

		_, err := inv.FetchAccount(s.ctx)
		s.True(ierr.IsNotFound(err))
		apiErr, ok := AsAPIError(err)
		s.Require().True(ok)
		s.Equal("not_found", apiErr.Symbol)
	})
}

func (s *InvoiceSuite) TestFetchSubscriptions_UsesLink() {
	inv := s.loaded()
	s.transport.RegisterXML(http.MethodGet, "invoices/1010/subscriptions?per_page=50", http.StatusOK,
		testutil.SubscriptionsXML(testBase, "sub-1"))

	subs, err := inv.FetchSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(subs, 1)
	s.Equal("sub-1", subs[0].UUID)
	s.Equal("gold", subs[0].PlanCode)
	s.Equal(testBase+"accounts/acme", subs[0].Link("account"))
	s.Equal(subs, inv.Subscriptions)
}

func (s *InvoiceSuite) TestFetchSubscriptions_FallbackAndPagination() {
	inv := s.client.NewInvoice()
	inv.Href = testBase + "invoices/2020"

	s.transport.RegisterResponse(http.MethodGet, "invoices/2020/subscriptions?per_page=50", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(testutil.SubscriptionsXML(testBase, "sub-1", "sub-2")),
		Headers: map[string]string{
			"Link": `<` + testBase + `invoices/2020/subscriptions?cursor=2&per_page=50>; rel="next"`,
		},
	})
	s.transport.RegisterXML(http.MethodGet, "invoices/2020/subscriptions?cursor=2&per_page=50", http.StatusOK,
		testutil.SubscriptionsXML(testBase, "sub-3"))

	subs, err := inv.FetchSubscriptions(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"sub-1", "sub-2", "sub-3"}, lo.Map(subs, func(sub *Subscription, _ int) string { return sub.UUID }))
	s.Len(inv.Subscriptions, 3)

	reqs := s.transport.Requests()
	s.Require().Len(reqs, 2)
	s.Equal(testBase+"invoices/2020/subscriptions?per_page=50", reqs[0].URL)
}

func (s *InvoiceSuite) TestFetchSubscriptions_ErrorKeepsPreviousResult() {
	inv := s.loaded()
	inv.Subscriptions = []*Subscription{{UUID: "old"}}
	s.transport.RegisterXML(http.MethodGet, "invoices/1010/subscriptions?per_page=50", http.StatusForbidden,
		`<error><symbol>forbidden</symbol><description>nope</description></error>`)

	_, err := inv.FetchSubscriptions(s.ctx)
	s.True(ierr.IsPermissionDenied(err))
	s.Require().Len(inv.Subscriptions, 1)
	s.Equal("old", inv.Subscriptions[0].UUID)
}

func TestUnboundInvoice(t *testing.T) {
	inv := &Invoice{InvoiceNumber: "1010"}
	inv.Href = testBase + "invoices/1010"

	_, err := inv.FetchPDF(context.Background())
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))

	_, err = inv.FetchSubscriptions(context.Background())
	assert.True(t, ierr.IsInvalidOperation(err))
}
