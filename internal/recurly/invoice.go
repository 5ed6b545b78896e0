package recurly

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/flexprice/recurly-client/internal/types"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
	"github.com/shopspring/decimal"
)

const (
	InvoiceSingular = "invoice"
	InvoicePlural   = "invoices"
)

// InvoiceState is the collection state of an invoice
type InvoiceState string

const (
	InvoiceStateOpen       InvoiceState = "open"
	InvoiceStatePending    InvoiceState = "pending"
	InvoiceStateProcessing InvoiceState = "processing"
	InvoiceStateCollected  InvoiceState = "collected"
	InvoiceStatePaid       InvoiceState = "paid"
	InvoiceStateFailed     InvoiceState = "failed"
	InvoiceStatePastDue    InvoiceState = "past_due"
)

// Invoice is a billing document keyed by its invoice number
type Invoice struct {
	Resource

	AccountCode                   string          `json:"account_code,omitempty"`
	Address                       *Address        `json:"address,omitempty"`
	Adjustment                    *LineItem       `json:"adjustment,omitempty"`
	AllLineItems                  []LineItem      `json:"all_line_items,omitempty"`
	AmountRemainingInCents        int64           `json:"amount_remaining_in_cents"`
	AttemptNextCollectionAt       *time.Time      `json:"attempt_next_collection_at,omitempty"`
	CreatedAt                     *time.Time      `json:"created_at,omitempty"`
	CreditCustomerNotes           string          `json:"credit_customer_notes,omitempty"`
	ClosedAt                      *time.Time      `json:"closed_at,omitempty"`
	Currency                      string          `json:"currency,omitempty"`
	CustomerNotes                 string          `json:"customer_notes,omitempty"`
	CollectionMethod              string          `json:"collection_method,omitempty"`
	InvoiceNumber                 string          `json:"invoice_number,omitempty"`
	InvoiceNumberPrefix           string          `json:"invoice_number_prefix,omitempty"`
	LineItems                     []LineItem      `json:"line_items,omitempty"`
	NetTerms                      int             `json:"net_terms"`
	PONumber                      string          `json:"po_number,omitempty"`
	RecoveryReason                string          `json:"recovery_reason,omitempty"`
	ShippingAddress               *Address        `json:"shipping_address,omitempty"`
	State                         InvoiceState    `json:"state,omitempty"`
	SubtotalInCents               int64           `json:"subtotal_in_cents"`
	SubtotalBeforeDiscountInCents int64           `json:"subtotal_before_discount_in_cents"`
	TaxInCents                    int64           `json:"tax_in_cents"`
	TermsAndConditions            string          `json:"terms_and_conditions,omitempty"`
	TotalInCents                  int64           `json:"total_in_cents"`
	Transactions                  []Transaction   `json:"transactions,omitempty"`
	UpdatedAt                     *time.Time      `json:"updated_at,omitempty"`
	UUID                          string          `json:"uuid,omitempty"`
	VATNumber                     string          `json:"vat_number,omitempty"`
	Subscriptions                 []*Subscription `json:"subscriptions,omitempty"`
}

var invoiceSchema = schema[Invoice]{
	"account": func(inv *Invoice, el *etree.Element) error {
		inv.AccountCode = xmlcodec.Text(el.SelectElement("account_code"))
		return nil
	},
	"address":                    objectField(addressSchema, func(inv *Invoice) **Address { return &inv.Address }),
	"adjustment":                 objectField(lineItemSchema, func(inv *Invoice) **LineItem { return &inv.Adjustment }),
	"all_line_items":             listField(lineItemSchema, func(inv *Invoice) *[]LineItem { return &inv.AllLineItems }),
	"amount_remaining_in_cents":  int64Field(func(inv *Invoice) *int64 { return &inv.AmountRemainingInCents }),
	"attempt_next_collection_at": timeField(func(inv *Invoice) **time.Time { return &inv.AttemptNextCollectionAt }),
	"created_at":                 timeField(func(inv *Invoice) **time.Time { return &inv.CreatedAt }),
	"credit_customer_notes":      stringField(func(inv *Invoice) *string { return &inv.CreditCustomerNotes }),
	"closed_at":                  timeField(func(inv *Invoice) **time.Time { return &inv.ClosedAt }),
	"currency":                   stringField(func(inv *Invoice) *string { return &inv.Currency }),
	"customer_notes":             stringField(func(inv *Invoice) *string { return &inv.CustomerNotes }),
	"collection_method":          stringField(func(inv *Invoice) *string { return &inv.CollectionMethod }),
	"invoice_number":             stringField(func(inv *Invoice) *string { return &inv.InvoiceNumber }),
	"invoice_number_prefix":      stringField(func(inv *Invoice) *string { return &inv.InvoiceNumberPrefix }),
	"line_items":                 listField(lineItemSchema, func(inv *Invoice) *[]LineItem { return &inv.LineItems }),
	"net_terms":                  intField(func(inv *Invoice) *int { return &inv.NetTerms }),
	"po_number":                  stringField(func(inv *Invoice) *string { return &inv.PONumber }),
	"recovery_reason":            stringField(func(inv *Invoice) *string { return &inv.RecoveryReason }),
	"shipping_address":           objectField(addressSchema, func(inv *Invoice) **Address { return &inv.ShippingAddress }),
	"state": func(inv *Invoice, el *etree.Element) error {
		inv.State = InvoiceState(xmlcodec.Text(el))
		return nil
	},
	"subtotal_in_cents":                 int64Field(func(inv *Invoice) *int64 { return &inv.SubtotalInCents }),
	"subtotal_before_discount_in_cents": int64Field(func(inv *Invoice) *int64 { return &inv.SubtotalBeforeDiscountInCents }),
	"tax_in_cents":                      int64Field(func(inv *Invoice) *int64 { return &inv.TaxInCents }),
	"terms_and_conditions":              stringField(func(inv *Invoice) *string { return &inv.TermsAndConditions }),
	"total_in_cents":                    int64Field(func(inv *Invoice) *int64 { return &inv.TotalInCents }),
	"transactions":                      listField(transactionSchema, func(inv *Invoice) *[]Transaction { return &inv.Transactions }),
	"updated_at":                        timeField(func(inv *Invoice) **time.Time { return &inv.UpdatedAt }),
	"uuid":                              stringField(func(inv *Invoice) *string { return &inv.UUID }),
	"vat_number":                        stringField(func(inv *Invoice) *string { return &inv.VATNumber }),
}

// InvoiceFields lists the wire names of every invoice field
func InvoiceFields() []string {
	return invoiceSchema.names()
}

// Endpoint returns the invoice collection uri
func (inv *Invoice) Endpoint() string {
	if inv.client == nil {
		return ""
	}
	return inv.client.Endpoint(InvoicePlural)
}

// Merge copies every field present in p into inv. On error inv is unchanged.
func (inv *Invoice) Merge(p *xmlcodec.Payload) error {
	if p == nil {
		return nil
	}

	next := *inv
	next.Resource = inv.Resource.clone()
	next.inflateLinks(p)
	if err := invoiceSchema.apply(&next, p.Fields); err != nil {
		return err
	}

	*inv = next
	return nil
}

func (inv *Invoice) inflate(body []byte) error {
	p, err := decodeBody(body)
	if err != nil {
		return err
	}
	return inv.Merge(p)
}

// Fetch reloads the invoice from its href, or from its invoice number
func (inv *Invoice) Fetch(ctx context.Context) error {
	uri := inv.Href
	if uri == "" && inv.InvoiceNumber != "" {
		uri = memberURI(inv.Endpoint(), inv.InvoiceNumber)
	}
	if uri == "" {
		return ErrMissingHref
	}

	p, err := inv.fetchPayload(ctx, uri)
	if err != nil {
		return err
	}
	return inv.Merge(p)
}

// Total returns the invoice total in major currency units
func (inv *Invoice) Total() decimal.Decimal {
	return types.FromMinorUnits(inv.TotalInCents, inv.Currency)
}

// Subtotal returns the invoice subtotal in major currency units
func (inv *Invoice) Subtotal() decimal.Decimal {
	return types.FromMinorUnits(inv.SubtotalInCents, inv.Currency)
}

// Tax returns the invoice tax in major currency units
func (inv *Invoice) Tax() decimal.Decimal {
	return types.FromMinorUnits(inv.TaxInCents, inv.Currency)
}

// AmountRemaining returns the unpaid balance in major currency units
func (inv *Invoice) AmountRemaining() decimal.Decimal {
	return types.FromMinorUnits(inv.AmountRemainingInCents, inv.Currency)
}

// DisplayNumber returns the invoice number with its prefix, e.g. FR1005
func (inv *Invoice) DisplayNumber() string {
	return inv.InvoiceNumberPrefix + inv.InvoiceNumber
}

func (inv *Invoice) String() string {
	return fmt.Sprintf("invoice %s (%s, %s)", inv.DisplayNumber(), inv.State, types.FormatAmount(inv.Total(), inv.Currency))
}
