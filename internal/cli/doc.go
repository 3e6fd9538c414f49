// Package cli provides the InvoiceDesk command-line client.
//
// It wires configuration, the local settings database, the REST transport
// and the entity stores into a cobra command tree. Typical flow: sign in
// with 'idesk login', then manage clients and invoices, administer users,
// or follow live changes with 'idesk events listen'.
//
// Key features:
//   - Login / Register / Logout with a locally persisted session
//   - Client directory CRUD with change history
//   - Invoice lifecycle: create, send, record payments, cancel, duplicate
//   - PDF download and CSV export
//   - Admin dashboards, security audit log, user administration
//   - Manager workspace with scoped listings
//
// Destructive commands go through a confirmation step unless -y is given.
package cli
