package cmd

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/flexprice/recurly-client/internal/recurly"
	"github.com/flexprice/recurly-client/internal/testutil"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "cli-key"

func setupAPI(t *testing.T) *testutil.FakeAPI {
	t.Helper()
	api := testutil.NewFakeAPI(t, testAPIKey)
	t.Setenv("RECURLY_API_KEY", testAPIKey)
	t.Setenv("RECURLY_BASE_URL", api.BaseURL())
	t.Setenv("HTTP_RETRY_MAX", "0")
	return api
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInvoiceGet(t *testing.T) {
	api := setupAPI(t)
	api.Handle(http.MethodGet, "invoices/1010", testutil.FakeResponse{
		Status: http.StatusOK,
		Body:   testutil.InvoiceXML(testutil.BasePlaceholder, "1010", "open"),
	})

	out, err := runCLI(t, "invoice", "get", "1010")
	require.NoError(t, err)

	var inv recurly.Invoice
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	assert.Equal(t, "1010", inv.InvoiceNumber)
	assert.Equal(t, recurly.InvoiceStateOpen, inv.State)
	assert.Equal(t, int64(1088), inv.TotalInCents)
}

func TestInvoiceMarkSuccessful_Batch(t *testing.T) {
	api := setupAPI(t)
	api.Handle(http.MethodPut, "invoices/1010/mark_successful", testutil.FakeResponse{
		Status: http.StatusOK,
		Body:   testutil.InvoiceXML(testutil.BasePlaceholder, "1010", "paid"),
	})
	api.Handle(http.MethodPut, "invoices/1011/mark_successful", testutil.FakeResponse{
		Status: http.StatusUnprocessableEntity,
		Body:   `<errors><error field="invoice.state" symbol="invalid_transition">cannot be marked successful</error></errors>`,
	})

	out, err := runCLI(t, "invoice", "mark-successful", "1011", "1010", "1010")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 invoices failed")

	var results []markResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, markResult{InvoiceNumber: "1010", State: recurly.InvoiceStatePaid}, results[0])
	assert.Equal(t, "1011", results[1].InvoiceNumber)
	assert.Contains(t, results[1].Error, "cannot be marked successful")

	puts := lo.Filter(api.Requests(), func(r testutil.RecordedRequest, _ int) bool { return r.Method == http.MethodPut })
	assert.Len(t, puts, 2)
}

func TestRefundOptions(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{}
		c.Flags().Int64Var(&refundAmount, "amount-in-cents", 0, "")
		c.Flags().BoolVar(&refundExternal, "external-refund", false, "")
		return c
	}

	t.Run("amount", func(t *testing.T) {
		c := newCmd()
		require.NoError(t, c.Flags().Set("amount-in-cents", "500"))
		refundAdjustmentUUID = nil

		opts, err := refundOptions(c)
		require.NoError(t, err)
		require.NotNil(t, opts.AmountInCents)
		assert.Equal(t, int64(500), *opts.AmountInCents)
		assert.Nil(t, opts.ExternalRefund)
		assert.Nil(t, opts.LineItems)
	})

	t.Run("adjustments", func(t *testing.T) {
		c := newCmd()
		refundAdjustmentUUID = []string{"a1", "a2:3"}
		defer func() { refundAdjustmentUUID = nil }()

		opts, err := refundOptions(c)
		require.NoError(t, err)
		assert.Nil(t, opts.AmountInCents)
		assert.Equal(t, []recurly.RefundLineItem{
			{AdjustmentUUID: "a1", Quantity: 1},
			{AdjustmentUUID: "a2", Quantity: 3},
		}, opts.LineItems)
	})

	t.Run("bad quantity", func(t *testing.T) {
		refundAdjustmentUUID = []string{"a1:x"}
		defer func() { refundAdjustmentUUID = nil }()

		_, err := refundOptions(newCmd())
		assert.Error(t, err)
	})
}

func TestInvoiceGet_NotFoundPrintsEnvelope(t *testing.T) {
	api := setupAPI(t)
	api.Handle(http.MethodGet, "invoices/404", testutil.FakeResponse{
		Status: http.StatusNotFound,
		Body:   `<?xml version="1.0" encoding="UTF-8"?><error><symbol>not_found</symbol><description>Couldn't find Invoice</description></error>`,
	})

	_, err := runCLI(t, "invoice", "get", "404")
	require.Error(t, err)

	out := new(bytes.Buffer)
	PrintError(out, err)
	assert.Contains(t, out.String(), `"success": false`)
	assert.Contains(t, out.String(), `"internal_error": "not_found"`)
	assert.Contains(t, out.String(), "Couldn't find Invoice")
}
