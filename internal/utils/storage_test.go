package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maintech/api/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestDeleteProfileImageStaysInsideUploads(t *testing.T) {
	assert.NoError(t, utils.InitLocalStorage())
	utils.SetStorageMode(true)

	t.Run("Error - Sibling directory with the uploads prefix", func(t *testing.T) {
		evilDir := "./uploads-evil"
		assert.NoError(t, os.MkdirAll(evilDir, 0755))
		defer os.RemoveAll(evilDir)

		target := filepath.Join(evilDir, "victim.jpg")
		assert.NoError(t, os.WriteFile(target, []byte("x"), 0644))

		err := utils.DeleteProfileImage("/uploads-evil/victim.jpg")
		assert.Error(t, err)

		_, statErr := os.Stat(target)
		assert.NoError(t, statErr, "File outside uploads must be untouched")
	})

	t.Run("Error - Traversal out of uploads", func(t *testing.T) {
		err := utils.DeleteProfileImage("/uploads/../uploads-evil/victim.jpg")
		assert.Error(t, err)
	})

	t.Run("Success - File inside uploads", func(t *testing.T) {
		target := filepath.Join(utils.ProfilesPath, "inside.jpg")
		assert.NoError(t, os.WriteFile(target, []byte("x"), 0644))

		assert.NoError(t, utils.DeleteProfileImage("/uploads/profiles/inside.jpg"))

		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("No-op - Empty path", func(t *testing.T) {
		assert.NoError(t, utils.DeleteProfileImage(""))
	})
}
