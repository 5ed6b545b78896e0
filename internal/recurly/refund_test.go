package recurly

import (
	"testing"
	"time"

	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    *RefundOptions
		wantErr bool
	}{
		{"nil options", nil, false},
		{"empty options", &RefundOptions{}, false},
		{"amount", &RefundOptions{AmountInCents: lo.ToPtr(int64(100)), RefundMethod: RefundMethodAllCredit}, false},
		{"zero amount", &RefundOptions{AmountInCents: lo.ToPtr(int64(0))}, true},
		{"unknown refund method", &RefundOptions{RefundMethod: "everything"}, true},
		{
			"line items",
			&RefundOptions{LineItems: []RefundLineItem{{AdjustmentUUID: "abc", Quantity: 1}}},
			false,
		},
		{
			"line item without uuid",
			&RefundOptions{LineItems: []RefundLineItem{{Quantity: 1}}},
			true,
		},
		{
			"amount and line items",
			&RefundOptions{
				AmountInCents: lo.ToPtr(int64(100)),
				LineItems:     []RefundLineItem{{AdjustmentUUID: "abc", Quantity: 1}},
			},
			true,
		},
		{"external refund without payment method", &RefundOptions{ExternalRefund: lo.ToPtr(true)}, true},
		{"external refund", &RefundOptions{ExternalRefund: lo.ToPtr(true), PaymentMethod: "check"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRefundOptions_Encode(t *testing.T) {
	refundedAt := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	opts := &RefundOptions{
		RefundMethod:   RefundMethodTransactionFirst,
		ExternalRefund: lo.ToPtr(true),
		PaymentMethod:  "check",
		RefundedAt:     &refundedAt,
		LineItems: []RefundLineItem{
			{AdjustmentUUID: "a1", Quantity: 1, Prorate: lo.ToPtr(false)},
			{AdjustmentUUID: "a2", Quantity: 2},
		},
		Extra: []xmlcodec.Field{{Name: "credit_customer_notes", Value: xmlcodec.Undefined}},
	}

	body, err := xmlcodec.Encode(InvoiceSingular, opts.Fields())
	require.NoError(t, err)

	assert.Contains(t, string(body),
		"<invoice>"+
			"<refund_method>transaction_first</refund_method>"+
			"<external_refund>true</external_refund>"+
			"<payment_method>check</payment_method>"+
			"<refunded_at>2024-05-02T12:00:00Z</refunded_at>"+
			"<line_items>"+
			"<adjustment><uuid>a1</uuid><quantity>1</quantity><prorate>false</prorate></adjustment>"+
			"<adjustment><uuid>a2</uuid><quantity>2</quantity></adjustment>"+
			"</line_items>"+
			"<credit_customer_notes></credit_customer_notes>"+
			"</invoice>")
}

func TestRefundOptions_NilFields(t *testing.T) {
	var opts *RefundOptions
	assert.Nil(t, opts.Fields())
}
