package document

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

// AcroForm is the document-level interactive form dictionary
type AcroForm struct {
	doc  *Document
	dict types.Dict
}

// Dict returns the raw AcroForm dictionary
func (af *AcroForm) Dict() types.Dict {
	return af.dict
}

// Fields returns the top-level Fields array. found is false when the entry is
// missing or does not resolve to an array.
func (af *AcroForm) Fields() (fields types.Array, found bool) {
	fieldsObj, ok := af.dict.Find("Fields")
	if !ok || fieldsObj == nil {
		return nil, false
	}

	arr, err := af.doc.Array(fieldsObj)
	if err != nil || arr == nil {
		return nil, false
	}
	return arr, true
}

// FieldCount returns the number of top-level fields
func (af *AcroForm) FieldCount() int {
	fields, _ := af.Fields()
	return len(fields)
}

// FieldAt resolves the top-level field at index. The returned reference is nil
// for fields stored directly in the Fields array.
func (af *AcroForm) FieldAt(index int) (types.Dict, *types.IndirectRef, error) {
	fields, found := af.Fields()
	if !found || index < 0 || index >= len(fields) {
		return nil, nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeMissingObject,
			"field index out of range", fmt.Sprintf("%d of %d", index, len(fields))).WithField(index)
	}

	fieldObj := fields[index]
	var ref *types.IndirectRef
	if ir, ok := fieldObj.(types.IndirectRef); ok {
		ref = &ir
	}

	fieldDict, err := af.doc.Dict(fieldObj)
	if err != nil {
		return nil, ref, pdferrors.WrapError(pdferrors.ErrorTypeMissingObject, "failed to dereference field", err).WithField(index)
	}
	if fieldDict == nil {
		return nil, ref, pdferrors.NewPDFError(pdferrors.ErrorTypeMissingObject, "field resolves to null").WithField(index)
	}
	return fieldDict, ref, nil
}
