package testutil

import "fmt"

// InvoiceXML renders an invoice document whose links point below base
func InvoiceXML(base, number, state string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<invoice href="%[1]sinvoices/%[2]s">
  <account href="%[1]saccounts/acme"/>
  <subscriptions href="%[1]sinvoices/%[2]s/subscriptions"/>
  <uuid>421f7b7d414e4c6792938e7c49d552e9</uuid>
  <state>%[3]s</state>
  <invoice_number_prefix></invoice_number_prefix>
  <invoice_number type="integer">%[2]s</invoice_number>
  <po_number nil="nil"></po_number>
  <vat_number nil="nil"></vat_number>
  <subtotal_in_cents type="integer">1000</subtotal_in_cents>
  <tax_in_cents type="integer">88</tax_in_cents>
  <total_in_cents type="integer">1088</total_in_cents>
  <amount_remaining_in_cents type="integer">1088</amount_remaining_in_cents>
  <currency>USD</currency>
  <created_at type="datetime">2024-05-01T10:00:00Z</created_at>
  <closed_at nil="nil"></closed_at>
  <net_terms type="integer">30</net_terms>
  <collection_method>manual</collection_method>
  <line_items type="array">
    <adjustment href="%[1]sadjustments/626db120a84f388b037af44444af9b9d">
      <uuid>626db120a84f388b037af44444af9b9d</uuid>
      <state>invoiced</state>
      <description>Gold plan</description>
      <unit_amount_in_cents type="integer">1000</unit_amount_in_cents>
      <quantity type="integer">1</quantity>
      <tax_in_cents type="integer">88</tax_in_cents>
      <total_in_cents type="integer">1088</total_in_cents>
      <currency>USD</currency>
    </adjustment>
  </line_items>
  <transactions type="array">
    <transaction href="%[1]stransactions/a13acd8fe4294916b79aec87b7ea441f">
      <uuid>a13acd8fe4294916b79aec87b7ea441f</uuid>
      <action>purchase</action>
      <amount_in_cents type="integer">1088</amount_in_cents>
      <status>success</status>
      <refundable type="boolean">true</refundable>
    </transaction>
  </transactions>
  <a name="refund" href="%[1]sinvoices/%[2]s/refund" method="post"/>
  <a name="mark_successful" href="%[1]sinvoices/%[2]s/mark_successful" method="put"/>
  <a name="mark_failed" href="%[1]sinvoices/%[2]s/mark_failed" method="put"/>
</invoice>`, base, number, state)
}

// AccountXML renders an account document
func AccountXML(base, code string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<account href="%[1]saccounts/%[2]s">
  <invoices href="%[1]saccounts/%[2]s/invoices"/>
  <subscriptions href="%[1]saccounts/%[2]s/subscriptions"/>
  <account_code>%[2]s</account_code>
  <state>active</state>
  <email>billing@acme.test</email>
  <first_name>Ada</first_name>
  <last_name>Lovelace</last_name>
  <company_name>Acme</company_name>
  <tax_exempt type="boolean">false</tax_exempt>
  <has_live_subscription type="boolean">true</has_live_subscription>
  <address>
    <address1>1 Main St</address1>
    <city>San Francisco</city>
    <state>CA</state>
    <zip>94105</zip>
    <country>US</country>
  </address>
  <created_at type="datetime">2023-01-01T00:00:00Z</created_at>
</account>`, base, code)
}

// SubscriptionsXML renders a subscription array with one entry per uuid
func SubscriptionsXML(base string, uuids ...string) string {
	out := `<?xml version="1.0" encoding="UTF-8"?>
<subscriptions type="array">`
	for _, uuid := range uuids {
		out += fmt.Sprintf(`
  <subscription href="%[1]ssubscriptions/%[2]s">
    <account href="%[1]saccounts/acme"/>
    <plan href="%[1]splans/gold">
      <plan_code>gold</plan_code>
      <name>Gold plan</name>
    </plan>
    <uuid>%[2]s</uuid>
    <state>active</state>
    <unit_amount_in_cents type="integer">1000</unit_amount_in_cents>
    <currency>USD</currency>
    <quantity type="integer">1</quantity>
    <activated_at type="datetime">2024-04-01T00:00:00Z</activated_at>
  </subscription>`, base, uuid)
	}
	return out + "\n</subscriptions>"
}

// InvoicesXML renders an invoice array with one entry per invoice number
func InvoicesXML(base, state string, numbers ...string) string {
	out := `<?xml version="1.0" encoding="UTF-8"?>
<invoices type="array">`
	for _, number := range numbers {
		out += fmt.Sprintf(`
  <invoice href="%[1]sinvoices/%[2]s">
    <account href="%[1]saccounts/acme"/>
    <invoice_number type="integer">%[2]s</invoice_number>
    <state>%[3]s</state>
    <total_in_cents type="integer">1088</total_in_cents>
    <currency>USD</currency>
  </invoice>`, base, number, state)
	}
	return out + "\n</invoices>"
}

// ValidationErrorXML renders a 422 errors document for one field
func ValidationErrorXML(field, symbol, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<errors>
  <error field="%s" symbol="%s">%s</error>
</errors>`, field, symbol, message)
}

// PDFBytes is a minimal document that sniffs as application/pdf
var PDFBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
