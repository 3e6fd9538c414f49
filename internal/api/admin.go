package api

import (
	"context"
	"net/http"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// AdminAPI talks to the admin-scoped endpoints.
type AdminAPI struct {
	t   *Transport
	log logging.Logger
}

func NewAdminAPI(t *Transport, log logging.Logger) *AdminAPI {
	return &AdminAPI{t: t, log: log}
}

func (a *AdminAPI) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	op := Op{Name: "admin.DashboardStats", Method: http.MethodGet, Path: "/admin/dashboard-stats"}

	resp, err := a.t.Get(ctx, "/admin/dashboard-stats", nil)
	if err != nil {
		return nil, Normalize(err, "failed to load dashboard statistics", op, a.log)
	}
	stats, err := decodeData[models.DashboardStats](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load dashboard statistics", op, a.log)
	}
	return &stats, nil
}

// SecurityLogs returns the audit log. The backend reports the total under
// "totalLogs"; the result is the same canonical ListResult as everywhere else.
func (a *AdminAPI) SecurityLogs(ctx context.Context, p ListParams) (ListResult[models.SecurityLogEntry], error) {
	op := Op{Name: "admin.SecurityLogs", Method: http.MethodGet, Path: "/admin/security-logs"}

	resp, err := a.t.Get(ctx, "/admin/security-logs", p.Values())
	if err != nil {
		return ListResult[models.SecurityLogEntry]{}, Normalize(err, "failed to load security logs", op, a.log)
	}
	out, err := decodeList[models.SecurityLogEntry](resp)
	if err != nil {
		return ListResult[models.SecurityLogEntry]{}, Normalize(err, "failed to load security logs", op, a.log)
	}
	return out, nil
}
