package normalize

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
)

// FieldKind is the normalization variant of a form field
type FieldKind int

const (
	FieldKindUnknown FieldKind = iota
	FieldKindTextBox
	FieldKindCheckBox
	FieldKindRadioButton
	FieldKindPushButton
	FieldKindChoice
	FieldKindSignature
)

// Field flag bits (1-based bit positions from the AcroForm field flags table)
const (
	flagRadio      = 1 << 15 // bit 16
	flagPushButton = 1 << 16 // bit 17
)

// maxParentDepth bounds the Parent chain walked for inherited attributes
const maxParentDepth = 32

func (k FieldKind) String() string {
	switch k {
	case FieldKindTextBox:
		return "text"
	case FieldKindCheckBox:
		return "checkbox"
	case FieldKindRadioButton:
		return "radio"
	case FieldKindPushButton:
		return "button"
	case FieldKindChoice:
		return "choice"
	case FieldKindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name, so report maps serialize as
// {"checkbox": 1} rather than by ordinal.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ClassifyField determines the kind of a field from its FT entry and flags,
// both of which may be inherited from a parent field.
func ClassifyField(doc *document.Document, fieldDict types.Dict) FieldKind {
	ctx := doc.Context()

	ftObj := inherited(doc, fieldDict, "FT")
	if ftObj == nil {
		return FieldKindUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldKindUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj := inherited(doc, fieldDict, "Ff"); flagsObj != nil {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				flagValue := flags.Value()
				if flagValue&flagRadio != 0 {
					return FieldKindRadioButton
				} else if flagValue&flagPushButton != 0 {
					return FieldKindPushButton
				}
			}
		}
		return FieldKindCheckBox
	case "Tx":
		return FieldKindTextBox
	case "Ch":
		return FieldKindChoice
	case "Sig":
		return FieldKindSignature
	default:
		return FieldKindUnknown
	}
}

// inherited looks key up on fieldDict and then up the Parent chain
func inherited(doc *document.Document, fieldDict types.Dict, key string) types.Object {
	dict := fieldDict
	for depth := 0; dict != nil && depth < maxParentDepth; depth++ {
		if obj, found := dict.Find(key); found && obj != nil {
			return obj
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			return nil
		}
		parent, err := doc.Dict(parentObj)
		if err != nil {
			return nil
		}
		dict = parent
	}
	return nil
}
