package migrate

import (
	"io/fs"
	"testing"

	"github.com/AchilleasB/coiipa/training-service/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RejectsBadInput(t *testing.T) {
	assert.Error(t, Run("", "up"))
	assert.Error(t, Run("postgres://localhost/training", "sideways"))
}

func TestMigrationFS_HasPairedMigrations(t *testing.T) {
	ups, err := fs.Glob(db.MigrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(db.MigrationFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
