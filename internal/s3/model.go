package s3

import "time"

// Document is an invoice rendering stored in the archive bucket
type Document struct {
	InvoiceNumber string       `json:"invoice_number"`
	Data          []byte       `json:"-"`
	Kind          DocumentKind `json:"kind"`
	FetchedAt     time.Time    `json:"fetched_at"`
}

type DocumentKind string

const (
	DocumentKindPdf DocumentKind = "pdf"
)

// NewInvoicePDF wraps the bytes returned by Invoice.FetchPDF
func NewInvoicePDF(invoiceNumber string, data []byte) *Document {
	return &Document{
		InvoiceNumber: invoiceNumber,
		Data:          data,
		Kind:          DocumentKindPdf,
		FetchedAt:     time.Now().UTC(),
	}
}
