package role_test

import (
	"testing"

	"github.com/maintech/api/internal/role"
	"github.com/maintech/api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func TestSeedDefaultRoles(t *testing.T) {
	testutils.SetupTestApp(t)

	for _, name := range []string{"operateur", "technicien", "magasinier", "responsable", "admin"} {
		r, err := role.GetByName(name)
		assert.NoError(t, err, "role %q should be seeded", name)
		assert.NotZero(t, r.ID)
		assert.True(t, role.IsValid(name))
	}

	assert.Len(t, role.Names(), 5)
	assert.False(t, role.IsValid("patron"))

	// Seeding twice must not duplicate rows.
	assert.NoError(t, role.SeedDefaultRoles())
	roles, err := role.GetByName("admin")
	assert.NoError(t, err)
	assert.NotNil(t, roles)
}
