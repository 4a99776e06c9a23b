package postgres

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	body, err := io.ReadAll(up)
	require.NoError(t, err)

	for _, constraint := range []string{
		constraintApplicationEmail,
		constraintApplicationNumber,
		constraintVendorEmail,
		constraintAdminEmail,
	} {
		assert.Contains(t, string(body), constraint)
	}

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	down.Close()
}
