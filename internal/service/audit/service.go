package audit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
)

type AuditServiceImpl struct {
	audit.AuditRepository
	policy user.Policy
	loc    *time.Location
}

func NewAuditService(auditRepo audit.AuditRepository, policy user.Policy, loc *time.Location) audit.AuditService {
	if loc == nil {
		loc = time.UTC
	}
	return &AuditServiceImpl{
		AuditRepository: auditRepo,
		policy:          policy,
		loc:             loc,
	}
}

// ListLogs implements audit.AuditService.
func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter audit.AuditLogFilter) (audit.ListAuditLogResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListAuditLogResponse{}, err
	}

	id, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return audit.ListAuditLogResponse{}, fmt.Errorf("%w: %v", user.ErrUnauthenticated, err)
	}
	if !s.policy.Allows(id, user.PermissionAuditView) {
		return audit.ListAuditLogResponse{}, user.ErrInsufficientPermissions
	}

	logs, total, err := s.AuditRepository.List(ctx, filter)
	if err != nil {
		return audit.ListAuditLogResponse{}, fmt.Errorf("failed to list audit logs: %w", err)
	}

	responses := make([]audit.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		changes := l.Changes
		if changes == nil {
			changes = map[string]audit.Change{}
		}
		responses = append(responses, audit.AuditLogResponse{
			ID:          l.ID,
			ActorUserID: l.ActorUserID,
			Action:      string(l.Action),
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			Changes:     changes,
			IPAddress:   l.IPAddress,
			CreatedAt:   l.CreatedAt.In(s.loc).Format(time.RFC3339),
		})
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return audit.ListAuditLogResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Logs:       responses,
	}, nil
}
