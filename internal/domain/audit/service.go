package audit

import "context"

type AuditService interface {
	ListLogs(ctx context.Context, filter AuditLogFilter) (ListAuditLogResponse, error)
}
