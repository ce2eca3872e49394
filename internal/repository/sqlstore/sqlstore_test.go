package sqlstore

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/brenowss/foodiary/internal/db"
	"github.com/brenowss/foodiary/internal/model"
)

// newTestDB opens a migrated in-memory database that lives for one test.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func createTestUser(t *testing.T, conn *sqlx.DB, email string) *model.User {
	t.Helper()
	u := &model.User{
		Name:          "Maria Silva",
		Email:         email,
		PasswordHash:  "$2a$10$hash",
		Goal:          model.GoalMaintain,
		Gender:        model.GenderFemale,
		BirthDate:     "1990-05-17",
		Height:        165,
		Weight:        62,
		ActivityLevel: 3,
	}
	require.NoError(t, NewUserStore(conn).Create(context.Background(), u))
	return u
}
