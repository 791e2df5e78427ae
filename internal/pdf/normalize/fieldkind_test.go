package normalize

import (
	"encoding/json"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/pdftest"
)

func TestClassifyField(t *testing.T) {
	tests := []struct {
		name  string
		field types.Dict
		want  FieldKind
	}{
		{"text", types.Dict{"FT": types.Name("Tx")}, FieldKindTextBox},
		{"checkbox", types.Dict{"FT": types.Name("Btn")}, FieldKindCheckBox},
		{"checkbox with unrelated flags", types.Dict{"FT": types.Name("Btn"), "Ff": types.Integer(1)}, FieldKindCheckBox},
		{"radio", types.Dict{"FT": types.Name("Btn"), "Ff": types.Integer(flagRadio)}, FieldKindRadioButton},
		{"push button", types.Dict{"FT": types.Name("Btn"), "Ff": types.Integer(flagPushButton)}, FieldKindPushButton},
		{"choice", types.Dict{"FT": types.Name("Ch")}, FieldKindChoice},
		{"signature", types.Dict{"FT": types.Name("Sig")}, FieldKindSignature},
		{"no type", types.Dict{"T": types.StringLiteral("x")}, FieldKindUnknown},
		{"odd type", types.Dict{"FT": types.Name("Zz")}, FieldKindUnknown},
	}

	doc := pdftest.NewDocument(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyField(doc, tt.field))
		})
	}
}

func TestClassifyField_InheritsFromParent(t *testing.T) {
	doc := pdftest.NewDocument(t)

	parentRef := pdftest.AddObject(t, doc, types.Dict{
		"FT": types.Name("Btn"),
		"Ff": types.Integer(flagRadio),
	})
	kid := types.Dict{"Parent": parentRef, "AS": types.Name("Off")}

	assert.Equal(t, FieldKindRadioButton, ClassifyField(doc, kid))
}

func TestClassifyField_ParentCycle(t *testing.T) {
	doc := pdftest.NewDocument(t)

	a := types.Dict{}
	aRef := pdftest.AddObject(t, doc, a)
	b := types.Dict{"Parent": aRef}
	bRef := pdftest.AddObject(t, doc, b)
	a["Parent"] = bRef

	assert.Equal(t, FieldKindUnknown, ClassifyField(doc, b))
}

func TestFieldKindString(t *testing.T) {
	assert.Equal(t, "text", FieldKindTextBox.String())
	assert.Equal(t, "checkbox", FieldKindCheckBox.String())
	assert.Equal(t, "radio", FieldKindRadioButton.String())
	assert.Equal(t, "unknown", FieldKind(99).String())
}

func TestReportJSONUsesKindNames(t *testing.T) {
	report := &Report{
		AcroFormFound: true,
		FieldCount:    2,
		Fields:        map[FieldKind]int{FieldKindCheckBox: 1, FieldKindRadioButton: 1},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"acroform_found":true,"field_count":2,"fields":{"checkbox":1,"radio":1},"kids_normalized":0,"streams_replaced":0}`,
		string(data))
}
