package recurly

import (
	"time"

	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/validator"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/samber/lo"
)

// RefundMethod decides how a refund is split between credit and transactions
type RefundMethod string

const (
	RefundMethodCreditFirst      RefundMethod = "credit_first"
	RefundMethodTransactionFirst RefundMethod = "transaction_first"
	RefundMethodAllCredit        RefundMethod = "all_credit"
	RefundMethodAllTransaction   RefundMethod = "all_transaction"
)

// RefundOptions is the body of an invoice refund. Either AmountInCents
// (open amount refund) or LineItems (line item refund) may be set.
type RefundOptions struct {
	AmountInCents       *int64           `validate:"omitempty,gt=0,excluded_with=LineItems"`
	RefundMethod        RefundMethod     `validate:"omitempty,oneof=credit_first transaction_first all_credit all_transaction"`
	ExternalRefund      *bool            `validate:"omitempty"`
	CreditCustomerNotes string           `validate:"omitempty,max=2048"`
	PaymentMethod       string           `validate:"omitempty,max=255"`
	Description         string           `validate:"omitempty,max=255"`
	RefundedAt          *time.Time       `validate:"omitempty"`
	LineItems           []RefundLineItem `validate:"omitempty,dive"`

	// Extra is appended verbatim after the known fields
	Extra []xmlcodec.Field `validate:"-"`
}

// RefundLineItem refunds some quantity of one adjustment
type RefundLineItem struct {
	AdjustmentUUID string `validate:"required"`
	Quantity       int    `validate:"required,gt=0"`
	Prorate        *bool  `validate:"omitempty"`
}

// Validate checks the options before any request is sent
func (o *RefundOptions) Validate() error {
	if o == nil {
		return nil
	}
	if err := validator.ValidateRequest(o); err != nil {
		return err
	}
	if lo.FromPtr(o.ExternalRefund) && o.PaymentMethod == "" {
		return ierr.NewError("payment_method is required for an external refund").
			WithHint("Set the payment method used to refund outside the billing api").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Fields renders the options in wire order. Unset options are omitted.
func (o *RefundOptions) Fields() []xmlcodec.Field {
	if o == nil {
		return nil
	}

	var fields []xmlcodec.Field
	add := func(name string, value any) {
		fields = append(fields, xmlcodec.Field{Name: name, Value: value})
	}

	if o.AmountInCents != nil {
		add("amount_in_cents", *o.AmountInCents)
	}
	if o.RefundMethod != "" {
		add("refund_method", string(o.RefundMethod))
	}
	if o.ExternalRefund != nil {
		add("external_refund", *o.ExternalRefund)
	}
	if o.CreditCustomerNotes != "" {
		add("credit_customer_notes", o.CreditCustomerNotes)
	}
	if o.PaymentMethod != "" {
		add("payment_method", o.PaymentMethod)
	}
	if o.Description != "" {
		add("description", o.Description)
	}
	if o.RefundedAt != nil {
		add("refunded_at", *o.RefundedAt)
	}
	if len(o.LineItems) > 0 {
		items := lo.Map(o.LineItems, func(li RefundLineItem, _ int) xmlcodec.Field {
			adj := []xmlcodec.Field{
				{Name: "uuid", Value: li.AdjustmentUUID},
				{Name: "quantity", Value: li.Quantity},
			}
			if li.Prorate != nil {
				adj = append(adj, xmlcodec.Field{Name: "prorate", Value: *li.Prorate})
			}
			return xmlcodec.Field{Name: "adjustment", Value: adj}
		})
		add("line_items", items)
	}

	return append(fields, o.Extra...)
}
