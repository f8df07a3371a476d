//go:build integration

package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/testhelpers"
)

// Test_003_UnboundedCableLength verifies that lengths keep every digit and their scale.
func Test_003_UnboundedCableLength(t *testing.T) {
	testDB := testhelpers.GetCleanTestDB(t)
	ctx := context.Background()
	pool := testDB.DB.Pool

	_, err := pool.Exec(ctx, `
		INSERT INTO cbls_catalog (msf, item_name, cable_length, cable_length_value)
		VALUES ('LONG', 'PATCH-123456789M-LC', '123456789M', 123456789),
		       ('FINE', 'AOC 1.125M CABLE', '1.125M', 1.125)`)
	require.NoError(t, err, "lengths beyond NUMERIC(10, 2) should be accepted")

	var long, fine string
	err = pool.QueryRow(ctx, `SELECT cable_length_value::text FROM cbls_catalog WHERE msf = 'LONG'`).Scan(&long)
	require.NoError(t, err)
	assert.Equal(t, "123456789", long)

	err = pool.QueryRow(ctx, `SELECT cable_length_value::text FROM cbls_catalog WHERE msf = 'FINE'`).Scan(&fine)
	require.NoError(t, err)
	assert.Equal(t, "1.125", fine, "scale should not be rounded")
}
