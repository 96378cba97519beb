package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketplace-admin/internal/repository"
	"marketplace-admin/internal/repository/sqlite"
)

type fixtures struct {
	admins repository.AdminRepository
	docs   repository.DocumentRepository
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "sandbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := fixtures{
		admins: sqlite.NewAdminRepository(db),
		docs:   sqlite.NewDocumentRepository(db),
	}
	require.NoError(t, f.admins.Init(ctx))
	require.NoError(t, f.docs.Init(ctx))
	return f
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
