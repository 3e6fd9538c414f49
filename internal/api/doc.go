// Package api implements the wire layer of the InvoiceDesk client: a single
// configured HTTP transport, one module per backend resource mapping 1:1 to
// REST endpoints, and the normalizer that converts every failure into the
// one uniform error shape the stores and the UI consume.
package api
