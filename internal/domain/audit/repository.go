package audit

import "context"

type AuditRepository interface {
	// Create joins the caller's transaction when ctx carries one
	Create(ctx context.Context, log Log) (Log, error)
	List(ctx context.Context, filter AuditLogFilter) ([]Log, int64, error)
}
