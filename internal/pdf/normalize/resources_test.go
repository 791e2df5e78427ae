package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

func TestResourceTable_Read(t *testing.T) {
	dir := t.TempDir()
	writeResources(t, dir)
	rt := NewResourceTable(dir)

	data, err := rt.Read(ResourceKey{FieldKindCheckBox, AppearanceDown, StateYes})
	require.NoError(t, err)
	assert.Equal(t, resourceBytes("checkBox_AP_on_D.txt"), data)

	// Radio N and D share files
	n, err := rt.Read(ResourceKey{FieldKindRadioButton, AppearanceNormal, StateNo})
	require.NoError(t, err)
	d, err := rt.Read(ResourceKey{FieldKindRadioButton, AppearanceDown, StateNo})
	require.NoError(t, err)
	assert.Equal(t, n, d)
}

func TestResourceTable_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	rt := NewResourceTable(dir)

	_, err := rt.Read(ResourceKey{FieldKindCheckBox, AppearanceNormal, StateOff})
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeResourceIO))
	assert.Contains(t, err.Error(), "checkBox_AP_off.txt")

	// Checkboxes have no No state
	_, err = rt.Read(ResourceKey{FieldKindCheckBox, AppearanceNormal, StateNo})
	require.Error(t, err)
	assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeResourceIO))
}

func TestResourceTable_Missing(t *testing.T) {
	dir := t.TempDir()
	rt := NewResourceTable(dir)
	assert.Len(t, rt.Missing(), 7)

	writeResources(t, dir)
	assert.Empty(t, rt.Missing())

	require.NoError(t, os.Remove(filepath.Join(dir, "radioButton_AP_no.txt")))
	assert.Equal(t, []string{filepath.Join(dir, "radioButton_AP_no.txt")}, rt.Missing())
}

func TestResourceTable_Path(t *testing.T) {
	rt := NewResourceTable("")
	assert.Equal(t, ".", rt.Dir())

	path, ok := rt.Path(ResourceKey{FieldKindRadioButton, AppearanceNormal, StateYes})
	require.True(t, ok)
	assert.Equal(t, "radioButton_AP_yes.txt", path)

	custom := NewResourceTableWithFiles("res", map[ResourceKey]string{
		{FieldKindCheckBox, AppearanceNormal, StateOff}: "off.bin",
	})
	path, ok = custom.Path(ResourceKey{FieldKindCheckBox, AppearanceNormal, StateOff})
	require.True(t, ok)
	assert.Equal(t, filepath.Join("res", "off.bin"), path)
	_, ok = custom.Path(ResourceKey{FieldKindCheckBox, AppearanceNormal, StateYes})
	assert.False(t, ok)
}
