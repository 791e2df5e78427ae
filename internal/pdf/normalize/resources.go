package normalize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

// AppearanceKind selects the appearance sub-dictionary of an AP entry
type AppearanceKind string

const (
	AppearanceNormal AppearanceKind = "N"
	AppearanceDown   AppearanceKind = "D"
)

// State is an appearance state name
type State string

const (
	StateOff State = "Off"
	StateYes State = "Yes"
	StateNo  State = "No"
)

// ResourceKey identifies one replacement appearance stream
type ResourceKey struct {
	Kind       FieldKind
	Appearance AppearanceKind
	State      State
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.Appearance, k.State)
}

// DefaultResourceFiles maps every replaceable appearance stream to its file name
var DefaultResourceFiles = map[ResourceKey]string{
	{FieldKindCheckBox, AppearanceNormal, StateOff}: "checkBox_AP_off.txt",
	{FieldKindCheckBox, AppearanceNormal, StateYes}: "checkBox_AP_on.txt",
	{FieldKindCheckBox, AppearanceDown, StateOff}:   "checkBox_AP_off_D.txt",
	{FieldKindCheckBox, AppearanceDown, StateYes}:   "checkBox_AP_on_D.txt",

	{FieldKindRadioButton, AppearanceNormal, StateOff}: "radioButton_AP_off.txt",
	{FieldKindRadioButton, AppearanceNormal, StateYes}: "radioButton_AP_yes.txt",
	{FieldKindRadioButton, AppearanceNormal, StateNo}:  "radioButton_AP_no.txt",
	{FieldKindRadioButton, AppearanceDown, StateOff}:   "radioButton_AP_off.txt",
	{FieldKindRadioButton, AppearanceDown, StateYes}:   "radioButton_AP_yes.txt",
	{FieldKindRadioButton, AppearanceDown, StateNo}:    "radioButton_AP_no.txt",
}

// ResourceTable resolves appearance resource keys to files on disk
type ResourceTable struct {
	dir   string
	paths map[ResourceKey]string
}

// NewResourceTable resolves the default resource files against dir.
// Files are not touched until they are read.
func NewResourceTable(dir string) *ResourceTable {
	return NewResourceTableWithFiles(dir, DefaultResourceFiles)
}

// NewResourceTableWithFiles resolves a custom key to file name mapping against dir
func NewResourceTableWithFiles(dir string, files map[ResourceKey]string) *ResourceTable {
	if dir == "" {
		dir = "."
	}

	paths := make(map[ResourceKey]string, len(files))
	for key, name := range files {
		paths[key] = filepath.Join(dir, name)
	}
	return &ResourceTable{dir: dir, paths: paths}
}

// Dir returns the directory the table was resolved against
func (rt *ResourceTable) Dir() string {
	return rt.dir
}

// Path returns the resolved file for key
func (rt *ResourceTable) Path(key ResourceKey) (string, bool) {
	path, ok := rt.paths[key]
	return path, ok
}

// Read returns the full contents of the file behind key
func (rt *ResourceTable) Read(key ResourceKey) ([]byte, error) {
	path, ok := rt.paths[key]
	if !ok {
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeResourceIO,
			"no appearance resource configured", key.String())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeResourceIO, "cannot open appearance resource", err).WithFile(path)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeResourceIO, "cannot read appearance resource", err).WithFile(path)
	}
	return data, nil
}

// Missing lists resolved files that do not exist, sorted and deduplicated
func (rt *ResourceTable) Missing() []string {
	seen := make(map[string]bool)
	var missing []string
	for _, path := range rt.paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	return missing
}
