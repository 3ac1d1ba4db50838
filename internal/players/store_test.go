package players

import (
	"testing"

	"github.com/psdleague/psdl-bot/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDirectory(t *testing.T) (Directory, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return New(db), teardown
}

func TestRegister(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	created, err := directory.Register(Profile{
		ID:     "U123",
		Handle: "  SomePlayer  ",
		Role:   RoleCore,
		Tier:   3,
	})
	require.NoError(t, err)
	assert.True(t, created)

	t.Run("defaults are applied", func(t *testing.T) {
		p, err := directory.GetByID("U123")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1000, p.Points)
		assert.True(t, p.Active)
		assert.NotZero(t, p.RegisteredAt)
		assert.Equal(t, "someplayer", p.Handle, "handles are normalized on write")
	})

	t.Run("re-registering the same id is a no-op", func(t *testing.T) {
		created, err := directory.Register(Profile{ID: "U123", Handle: "other", Role: RoleSupport, Tier: 1})
		require.NoError(t, err)
		assert.False(t, created)

		p, err := directory.GetByID("U123")
		require.NoError(t, err)
		assert.Equal(t, RoleCore, p.Role, "existing profile is untouched")
	})

	t.Run("explicit points survive", func(t *testing.T) {
		created, err := directory.Register(Profile{ID: "U456", Handle: "veteran", Role: RoleSupport, Tier: 5, Points: 1200})
		require.NoError(t, err)
		assert.True(t, created)

		p, err := directory.GetByID("U456")
		require.NoError(t, err)
		assert.Equal(t, 1200, p.Points)
	})
}

func TestGetByHandle(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	_, err := directory.Register(Profile{ID: "U1", Handle: "MixedCase", Role: RoleCore, Tier: 2})
	require.NoError(t, err)

	p, err := directory.GetByHandle("mixedcase")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "U1", p.ID)

	p, err = directory.GetByHandle("  MIXEDCASE ")
	require.NoError(t, err)
	require.NotNil(t, p, "lookup normalizes the same way registration does")

	p, err = directory.GetByHandle("nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpdate(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	_, err := directory.Register(Profile{ID: "U1", Handle: "orig", Role: RoleCore, Tier: 2})
	require.NoError(t, err)

	role := RoleSupport
	tier := 4
	require.NoError(t, directory.Update("U1", ProfileUpdate{Role: &role, Tier: &tier}))

	p, err := directory.GetByID("U1")
	require.NoError(t, err)
	assert.Equal(t, RoleSupport, p.Role)
	assert.Equal(t, 4, p.Tier)
	assert.Equal(t, "orig", p.Handle, "untouched fields keep their values")

	t.Run("empty update is a no-op", func(t *testing.T) {
		assert.NoError(t, directory.Update("U1", ProfileUpdate{}))
	})

	t.Run("unknown player errors", func(t *testing.T) {
		assert.Error(t, directory.Update("ghost", ProfileUpdate{Tier: &tier}))
	})
}

func TestDeactivate(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	_, err := directory.Register(Profile{ID: "U1", Handle: "leaver", Role: RoleCore, Tier: 1})
	require.NoError(t, err)
	require.NoError(t, directory.Deactivate("U1"))

	p, err := directory.GetByID("U1")
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.Equal(t, 1000, p.Points, "deactivation keeps ladder history")
}

func TestGetProfiles(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	for _, id := range []string{"U1", "U2", "U3"} {
		_, err := directory.Register(Profile{ID: id, Handle: "h" + id, Role: RoleCore, Tier: 1})
		require.NoError(t, err)
	}

	profiles, err := directory.GetProfiles([]string{"U1", "U3", "ghost"})
	require.NoError(t, err)
	assert.Len(t, profiles, 2, "unknown ids are omitted")

	profiles, err = directory.GetProfiles(nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestListAllAndPointDelta(t *testing.T) {
	directory, teardown := setupDirectory(t)
	defer teardown()

	_, err := directory.Register(Profile{ID: "U1", Handle: "low", Role: RoleCore, Tier: 1})
	require.NoError(t, err)
	_, err = directory.Register(Profile{ID: "U2", Handle: "high", Role: RoleSupport, Tier: 1})
	require.NoError(t, err)

	require.NoError(t, directory.ApplyPointDelta("U2", 25))
	require.NoError(t, directory.ApplyPointDelta("U1", -25))
	require.NoError(t, directory.ApplyPointDelta("ghost", 25), "unknown ids are skipped silently")

	profiles, err := directory.ListAll()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "U2", profiles[0].ID, "ordered by points descending")
	assert.Equal(t, 1025, profiles[0].Points)
	assert.Equal(t, 975, profiles[1].Points)
}
