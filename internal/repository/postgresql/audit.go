package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

// Create implements audit.AuditRepository.
func (r *auditRepositoryImpl) Create(ctx context.Context, log audit.Log) (audit.Log, error) {
	q := GetQuerier(ctx, r.db)

	if log.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return audit.Log{}, fmt.Errorf("failed to generate audit log id: %w", err)
		}
		log.ID = id.String()
	}
	if log.Changes == nil {
		log.Changes = map[string]audit.Change{}
	}

	changes, err := json.Marshal(log.Changes)
	if err != nil {
		return audit.Log{}, fmt.Errorf("failed to encode audit changes: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, changes, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		log.ID,
		log.ActorUserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		changes,
		log.IPAddress,
	).Scan(&log.CreatedAt)
	if err != nil {
		return audit.Log{}, fmt.Errorf("failed to create audit log: %w", err)
	}

	return log, nil
}

// List implements audit.AuditRepository.
func (r *auditRepositoryImpl) List(ctx context.Context, filter audit.AuditLogFilter) ([]audit.Log, int64, error) {
	var w whereBuilder
	w.addIf("entity_type = ?", filter.EntityType)
	w.addIf("entity_id = ?::uuid", filter.EntityID)
	w.addIf("actor_user_id = ?::uuid", filter.ActorUserID)
	w.addIf("action = ?", filter.Action)

	where := w.clause()
	countArgs := append([]interface{}(nil), w.args...)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, actor_user_id, action, entity_type, entity_id, changes, ip_address, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT %s OFFSET %s
	`, where, w.next(limit), w.next((page-1)*limit))

	var (
		total int64
		logs  []audit.Log
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := GetQuerier(gCtx, r.db)
		if err := q.QueryRow(gCtx, `SELECT COUNT(*) FROM audit_logs WHERE `+where, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count audit logs: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		q := GetQuerier(gCtx, r.db)
		rows, err := q.Query(gCtx, selectQuery, w.args...)
		if err != nil {
			return fmt.Errorf("failed to query audit logs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				l       audit.Log
				changes []byte
			)
			if err := rows.Scan(&l.ID, &l.ActorUserID, &l.Action, &l.EntityType, &l.EntityID, &changes, &l.IPAddress, &l.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan audit log: %w", err)
			}
			if err := json.Unmarshal(changes, &l.Changes); err != nil {
				return fmt.Errorf("failed to decode audit changes: %w", err)
			}
			logs = append(logs, l)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
