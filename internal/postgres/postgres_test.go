package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

var errRefused = errors.New("connection refused")

// refusingDriver fails every connection attempt so Open's ping path can be
// exercised without a server.
type refusingDriver struct{}

func (refusingDriver) Open(string) (driver.Conn, error) { return nil, errRefused }

var registerRefusing sync.Once

func TestIsolatedSchema(t *testing.T) {
	a := IsolatedSchema("Holocron_Test")
	b := IsolatedSchema("holocron_test")
	assert.True(t, strings.HasPrefix(a, "holocron_test_"), a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToLower(a), a)
	assert.NotContains(t, a, "-")

	assert.True(t, strings.HasPrefix(IsolatedSchema(""), "holocron_"))
}

func TestWithSearchPath(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"url", "postgres://u:p@db:5432/sw?sslmode=disable", "postgres://u:p@db:5432/sw?search_path=s1&sslmode=disable"},
		{"url replaces", "postgresql://db/sw?search_path=old", "postgresql://db/sw?search_path=s1"},
		{"key value", "host=db dbname=sw", "host=db dbname=sw search_path=s1"},
		{"empty", "", "search_path=s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithSearchPath(tt.dsn, "s1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "", "mysql")
	require.ErrorIs(t, err, types.ErrUnknownDriver)
}

func TestOpen_Defaults(t *testing.T) {
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return nil, errRefused
	})
	defer restore()

	_, err := Open(context.Background(), "postgres://db/sw", "")
	require.ErrorIs(t, err, errRefused)
	assert.Equal(t, types.DriverPgx, gotDriver)
	assert.Equal(t, "postgres://db/sw", gotDSN)
}

func TestOpen_EmptyDSN(t *testing.T) {
	called := false
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		called = true
		return nil, errRefused
	})
	defer restore()

	_, err := Open(context.Background(), "", types.DriverPgx)
	require.ErrorIs(t, err, types.ErrDSNEmpty)
	assert.False(t, called)
}

func TestOpen_PingFailure(t *testing.T) {
	registerRefusing.Do(func() { sql.Register("holocron-refusing", refusingDriver{}) })
	restore := OverrideSQLOpen(func(_, dsn string) (*sql.DB, error) {
		return sql.Open("holocron-refusing", dsn)
	})
	defer restore()

	_, err := Open(context.Background(), "postgres://nowhere/sw", types.DriverPostgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
	assert.ErrorIs(t, err, errRefused)
}

func TestBackend_AttachValidation(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Driver: types.DriverSQLite})
	require.ErrorIs(t, err, types.ErrUnknownDriver)

	err = b.Attach(types.Config{Driver: types.DriverPgx})
	require.ErrorIs(t, err, types.ErrDSNEmpty)

	_, err = b.DB()
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Table(types.MoviesTable)
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.NoError(t, b.Detach())
}
