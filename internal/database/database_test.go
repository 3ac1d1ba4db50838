package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {

	db, teardown, err := InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "InitDB should not return an error")
	if teardown != nil {
		defer teardown()
	} else {
		defer db.Close()
	}

	for _, table := range []string{"players", "pregame", "ongoing_matches", "finalized_matches", "team_pools"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name, "The '%s' table should be created", table)
	}
}

func TestInitDB_PregameIsSingleton(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec("INSERT INTO pregame (id, type, status, started_at) VALUES ('current', 'start', 'pending', 0)")
	require.NoError(t, err)

	// The CHECK constraint rejects any row id other than 'current'.
	_, err = db.Exec("INSERT INTO pregame (id, type, status, started_at) VALUES ('second', 'start', 'pending', 0)")
	assert.Error(t, err)
}
