package recurly

import (
	"time"

	"github.com/flexprice/recurly-client/internal/types"
	"github.com/shopspring/decimal"
)

// Address is a billing or shipping address
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Email     string `json:"email,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

var addressSchema = schema[Address]{
	"first_name": stringField(func(a *Address) *string { return &a.FirstName }),
	"last_name":  stringField(func(a *Address) *string { return &a.LastName }),
	"company":    stringField(func(a *Address) *string { return &a.Company }),
	"nickname":   stringField(func(a *Address) *string { return &a.Nickname }),
	"email":      stringField(func(a *Address) *string { return &a.Email }),
	"address1":   stringField(func(a *Address) *string { return &a.Address1 }),
	"address2":   stringField(func(a *Address) *string { return &a.Address2 }),
	"city":       stringField(func(a *Address) *string { return &a.City }),
	"state":      stringField(func(a *Address) *string { return &a.State }),
	"zip":        stringField(func(a *Address) *string { return &a.Zip }),
	"country":    stringField(func(a *Address) *string { return &a.Country }),
	"phone":      stringField(func(a *Address) *string { return &a.Phone }),
}

// LineItem is an adjustment (charge or credit) on an invoice
type LineItem struct {
	UUID              string     `json:"uuid"`
	State             string     `json:"state,omitempty"`
	Description       string     `json:"description,omitempty"`
	AccountingCode    string     `json:"accounting_code,omitempty"`
	ProductCode       string     `json:"product_code,omitempty"`
	Origin            string     `json:"origin,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	UnitAmountInCents int64      `json:"unit_amount_in_cents"`
	Quantity          int        `json:"quantity"`
	QuantityRemaining int        `json:"quantity_remaining,omitempty"`
	DiscountInCents   int64      `json:"discount_in_cents"`
	TaxInCents        int64      `json:"tax_in_cents"`
	TotalInCents      int64      `json:"total_in_cents"`
	TaxExempt         bool       `json:"tax_exempt"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

var lineItemSchema = schema[LineItem]{
	"uuid":                 stringField(func(l *LineItem) *string { return &l.UUID }),
	"state":                stringField(func(l *LineItem) *string { return &l.State }),
	"description":          stringField(func(l *LineItem) *string { return &l.Description }),
	"accounting_code":      stringField(func(l *LineItem) *string { return &l.AccountingCode }),
	"product_code":         stringField(func(l *LineItem) *string { return &l.ProductCode }),
	"origin":               stringField(func(l *LineItem) *string { return &l.Origin }),
	"currency":             stringField(func(l *LineItem) *string { return &l.Currency }),
	"unit_amount_in_cents": int64Field(func(l *LineItem) *int64 { return &l.UnitAmountInCents }),
	"quantity":             intField(func(l *LineItem) *int { return &l.Quantity }),
	"quantity_remaining":   intField(func(l *LineItem) *int { return &l.QuantityRemaining }),
	"discount_in_cents":    int64Field(func(l *LineItem) *int64 { return &l.DiscountInCents }),
	"tax_in_cents":         int64Field(func(l *LineItem) *int64 { return &l.TaxInCents }),
	"total_in_cents":       int64Field(func(l *LineItem) *int64 { return &l.TotalInCents }),
	"tax_exempt":           boolField(func(l *LineItem) *bool { return &l.TaxExempt }),
	"start_date":           timeField(func(l *LineItem) **time.Time { return &l.StartDate }),
	"end_date":             timeField(func(l *LineItem) **time.Time { return &l.EndDate }),
	"created_at":           timeField(func(l *LineItem) **time.Time { return &l.CreatedAt }),
	"updated_at":           timeField(func(l *LineItem) **time.Time { return &l.UpdatedAt }),
}

// Total returns the line item total in major currency units
func (l LineItem) Total() decimal.Decimal {
	return types.FromMinorUnits(l.TotalInCents, l.Currency)
}

// Transaction is a payment or refund recorded against an invoice
type Transaction struct {
	UUID          string     `json:"uuid"`
	Action        string     `json:"action,omitempty"`
	Status        string     `json:"status,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	AmountInCents int64      `json:"amount_in_cents"`
	TaxInCents    int64      `json:"tax_in_cents"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Source        string     `json:"source,omitempty"`
	Test          bool       `json:"test"`
	Voidable      bool       `json:"voidable"`
	Refundable    bool       `json:"refundable"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

var transactionSchema = schema[Transaction]{
	"uuid":            stringField(func(t *Transaction) *string { return &t.UUID }),
	"action":          stringField(func(t *Transaction) *string { return &t.Action }),
	"status":          stringField(func(t *Transaction) *string { return &t.Status }),
	"currency":        stringField(func(t *Transaction) *string { return &t.Currency }),
	"amount_in_cents": int64Field(func(t *Transaction) *int64 { return &t.AmountInCents }),
	"tax_in_cents":    int64Field(func(t *Transaction) *int64 { return &t.TaxInCents }),
	"payment_method":  stringField(func(t *Transaction) *string { return &t.PaymentMethod }),
	"reference":       stringField(func(t *Transaction) *string { return &t.Reference }),
	"source":          stringField(func(t *Transaction) *string { return &t.Source }),
	"test":            boolField(func(t *Transaction) *bool { return &t.Test }),
	"voidable":        boolField(func(t *Transaction) *bool { return &t.Voidable }),
	"refundable":      boolField(func(t *Transaction) *bool { return &t.Refundable }),
	"created_at":      timeField(func(t *Transaction) **time.Time { return &t.CreatedAt }),
}

// Amount returns the transaction amount in major currency units
func (t Transaction) Amount() decimal.Decimal {
	return types.FromMinorUnits(t.AmountInCents, t.Currency)
}
