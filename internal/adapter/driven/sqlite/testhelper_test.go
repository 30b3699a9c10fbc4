package sqlite

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory database shared between the writer
// and reader pools. Naming it after the test keeps parallel tests apart.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	name := url.PathEscape(t.Name())
	db, err := open(context.Background(), "file:"+name+"?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}
