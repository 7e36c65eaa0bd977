package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url  string
		want Driver
	}{
		{"", DriverSQLite},
		{"postgres://localhost/coachly", DriverPostgres},
		{"postgresql://localhost/coachly", DriverPostgres},
		{"/tmp/coachly.db", DriverSQLite},
		{"file:coachly.db", DriverSQLite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectDriver(tt.url), tt.url)
	}
	assert.Equal(t, "sqlite", DriverSQLite.String())
}

func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coachly.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(context.Background()))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenPostgres_RequiresURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", 0)
	assert.Error(t, err)
}
