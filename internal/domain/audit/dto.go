package audit

import (
	"strconv"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

type AuditLogFilter struct {
	EntityType  *string `json:"entity_type,omitempty"`
	EntityID    *string `json:"entity_id,omitempty"`
	ActorUserID *string `json:"actor_user_id,omitempty"`
	Action      *string `json:"action,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AuditLogFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Page > validator.MaxPage {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must not exceed " + strconv.Itoa(validator.MaxPage),
		})
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EntityID != nil && *f.EntityID != "" && !validator.IsValidUUID(*f.EntityID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entity_id",
			Message: "entity_id must be a valid UUID",
		})
	}
	if f.ActorUserID != nil && *f.ActorUserID != "" && !validator.IsValidUUID(*f.ActorUserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "actor_user_id",
			Message: "actor_user_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AuditLogResponse struct {
	ID          string            `json:"id"`
	ActorUserID *string           `json:"actor_user_id"`
	Action      string            `json:"action"`
	EntityType  string            `json:"entity_type"`
	EntityID    string            `json:"entity_id"`
	Changes     map[string]Change `json:"changes"`
	IPAddress   *string           `json:"ip_address,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

type ListAuditLogResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Logs       []AuditLogResponse `json:"logs"`
}
