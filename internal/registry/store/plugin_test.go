package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFolderFilter(t *testing.T) {
	f, err := ParseFolderFilter("")
	require.NoError(t, err)
	assert.Equal(t, FolderFilterModeAny, f.Mode)

	f, err = ParseFolderFilter("Any")
	require.NoError(t, err)
	assert.Equal(t, FolderFilterModeAny, f.Mode)

	f, err = ParseFolderFilter(" root ")
	require.NoError(t, err)
	assert.Equal(t, FolderFilterModeRoot, f.Mode)

	id := uuid.New()
	f, err = ParseFolderFilter(id.String())
	require.NoError(t, err)
	assert.Equal(t, FolderFilterModeFolder, f.Mode)
	require.NotNil(t, f.FolderID)
	assert.Equal(t, id, *f.FolderID)

	_, err = ParseFolderFilter("not-a-uuid")
	assert.Error(t, err)
}

func TestSelectUnknownStore(t *testing.T) {
	_, err := Select("no-such-store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}
