package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditService audit.AuditService
}

func NewAuditHandler(auditService audit.AuditService) AuditHandler {
	return &auditHandlerImpl{
		auditService: auditService,
	}
}

// List handles GET /audit-logs
func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter audit.AuditLogFilter

	if v := q.Get("entity_type"); v != "" {
		filter.EntityType = &v
	}
	if v := q.Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := q.Get("actor_user_id"); v != "" {
		filter.ActorUserID = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = l
	}

	result, err := h.auditService.ListLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
