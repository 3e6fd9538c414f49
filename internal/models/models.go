// Package models defines the records exchanged with the InvoiceDesk API.
// Fields mirror the backend resources; the client treats most of them as
// opaque payload and only relies on identifiers, version numbers and the
// fields that drive collection ordering.
package models

import "time"

// InvoiceStatus classifies an invoice lifecycle state as reported by the server.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Role classifies a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Client is a customer record.
type Client struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	VATNumber   string    `json:"vatNumber"`
	Notes       string    `json:"notes"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ClientInput carries the writable fields of a client record.
type ClientInput struct {
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	VATNumber   string `json:"vatNumber,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// HistoryEntry is one event in a client's activity history.
type HistoryEntry struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceItem is a single billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Invoice is an invoice record.
type Invoice struct {
	ID         string        `json:"id"`
	Number     string        `json:"number"`
	ClientID   string        `json:"clientId"`
	Status     InvoiceStatus `json:"status"`
	IssueDate  time.Time     `json:"issueDate"`
	DueDate    time.Time     `json:"dueDate"`
	Items      []InvoiceItem `json:"items"`
	Currency   string        `json:"currency"`
	Subtotal   float64       `json:"subtotal"`
	TaxRate    float64       `json:"taxRate"`
	Total      float64       `json:"total"`
	AmountPaid float64       `json:"amountPaid"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// InvoiceInput carries the writable fields of an invoice.
// IdempotencyID is generated client-side so a retried create cannot
// produce a duplicate invoice.
type InvoiceInput struct {
	ClientID      string        `json:"clientId"`
	IssueDate     time.Time     `json:"issueDate"`
	DueDate       time.Time     `json:"dueDate"`
	Items         []InvoiceItem `json:"items"`
	Currency      string        `json:"currency,omitempty"`
	TaxRate       float64       `json:"taxRate,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	IdempotencyID string        `json:"idempotencyId,omitempty"`
}

// Payment records money received against an invoice.
type Payment struct {
	Amount    float64   `json:"amount"`
	Method    string    `json:"method,omitempty"`
	PaidAt    time.Time `json:"paidAt"`
	Reference string    `json:"reference,omitempty"`
}

// User is an account record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch carries a partial user update. Nil fields are left unchanged.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply merges the patch into u, field by field.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the payload of a successful login or registration.
type Credentials struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// SecurityLogEntry is one row of the admin security audit log.
type SecurityLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalClients    int     `json:"totalClients"`
	TotalInvoices   int     `json:"totalInvoices"`
	TotalUsers      int     `json:"totalUsers"`
	Revenue         float64 `json:"revenue"`
	OutstandingSum  float64 `json:"outstandingSum"`
	OverdueInvoices int     `json:"overdueInvoices"`
}

// Quote is a manager-scoped quote record.
type Quote struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	ClientID  string    `json:"clientId"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	IssueDate time.Time `json:"issueDate"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ManagerDashboard is the manager dashboard summary.
type ManagerDashboard struct {
	OpenQuotes      int     `json:"openQuotes"`
	UnpaidInvoices  int     `json:"unpaidInvoices"`
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
	ActiveClients   int     `json:"activeClients"`
	ConversionRate  float64 `json:"conversionRate"`
	PendingLocalSum float64 `json:"pendingLocalSum"`
}
