package postgres_test

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	companyCols = []string{"id", "name", "industry", "location", "website", "notes", "created_at", "updated_at"}
	appCols     = []string{
		"id", "position", "description", "applied_date", "location", "job_url",
		"cover_letter", "notes", "company_id", "status_id", "created_at", "updated_at",
	}
	detailCols = append(append([]string{}, appCols...), "company_name", "status_name")
	statusCols = []string{"id", "name", "display_order", "created_at", "updated_at"}
	userCols   = []string{
		"id", "email", "user_name", "password_hash", "first_name", "last_name",
		"roles", "email_confirmed", "created_at", "updated_at",
	}
)

// newMock returns a pgxmock pool whose expectations must all be met by the
// end of the test.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, m.ExpectationsWereMet())
		m.Close()
	})
	return m
}

func existsRow(v bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(v)
}
