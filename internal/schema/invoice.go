package schema

import _ "embed"

//go:embed invoice.schema.json
var invoiceSchemaJSON []byte

// InvoiceContract returns the bundled invoice extraction contract, used as
// the server default when the caller supplies no schema of their own.
func InvoiceContract() (*Contract, error) {
	return Compile("invoice", invoiceSchemaJSON)
}
