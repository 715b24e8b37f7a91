package postgresql_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 20, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.ApplySchema(ctx, db))
	_, err = db.Exec(ctx, "TRUNCATE TABLE audit_logs, attendances, employees, users CASCADE")
	require.NoError(t, err)

	return db
}

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

// createTestUser inserts a user with the given role and grants.
func createTestUser(t *testing.T, db *database.DB, email, role string, grants []string) string {
	t.Helper()
	id := newID(t)
	if grants == nil {
		grants = []string{}
	}
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, role, grants)
		VALUES ($1, $2, 'hash', $3, $4)
	`, id, email, role, grants)
	require.NoError(t, err)
	return id
}

// createTestEmployee inserts an active employee, optionally linked to userID.
func createTestEmployee(t *testing.T, db *database.DB, userID *string, code, name, department string) string {
	t.Helper()
	id := newID(t)
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, user_id, employee_code, full_name, department, hire_date)
		VALUES ($1, $2, $3, $4, $5, '2020-01-01')
	`, id, userID, code, name, department)
	require.NoError(t, err)
	return id
}

func setHireDate(t *testing.T, db *database.DB, employeeID string, hired time.Time) {
	t.Helper()
	_, err := db.Exec(context.Background(), `UPDATE employees SET hire_date = $2::date WHERE id = $1`, employeeID, hired)
	require.NoError(t, err)
}
