// Package pdftest builds small in-memory PDF documents for tests.
package pdftest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
)

// NewDocument returns a document with a catalog and a single blank A4 page
func NewDocument(t testing.TB) *document.Document {
	t.Helper()

	ctx, err := pdfcpu.CreateContextWithXRefTable(model.NewDefaultConfiguration(), types.PaperSize["A4"])
	require.NoError(t, err)

	doc := document.New(ctx)
	catalog, err := doc.Catalog()
	require.NoError(t, err)

	pagesRef, ok := catalog["Pages"].(types.IndirectRef)
	if !ok {
		pagesRef = AddObject(t, doc, types.Dict{
			"Type":  types.Name("Pages"),
			"Kids":  types.Array{},
			"Count": types.Integer(0),
		})
		catalog["Pages"] = pagesRef
	}

	pagesDict, err := ctx.DereferenceDict(pagesRef)
	require.NoError(t, err)
	require.NotNil(t, pagesDict)

	page := types.Dict{
		"Type":     types.Name("Page"),
		"Parent":   pagesRef,
		"MediaBox": types.Array{types.Integer(0), types.Integer(0), types.Integer(595), types.Integer(842)},
	}
	pageRef := AddObject(t, doc, page)
	pagesDict["Kids"] = types.Array{pageRef}
	pagesDict["Count"] = types.Integer(1)
	ctx.PageCount = 1

	return doc
}

// AddObject registers obj as a new indirect object and returns its reference
func AddObject(t testing.TB, doc *document.Document, obj types.Object) types.IndirectRef {
	t.Helper()

	ref, err := doc.Context().IndRefForNewObject(obj)
	require.NoError(t, err)
	require.NotNil(t, ref)
	return *ref
}

// AddStream registers an unfiltered stream holding content
func AddStream(t testing.TB, doc *document.Document, content []byte) types.IndirectRef {
	t.Helper()

	length := int64(len(content))
	sd := types.StreamDict{
		Dict: types.Dict{
			"Type":    types.Name("XObject"),
			"Subtype": types.Name("Form"),
			"Length":  types.Integer(len(content)),
		},
		Content:      content,
		Raw:          content,
		StreamLength: &length,
	}
	return AddObject(t, doc, sd)
}

// AddFlateStream registers a stream that claims a FlateDecode filter
func AddFlateStream(t testing.TB, doc *document.Document, raw []byte) types.IndirectRef {
	t.Helper()

	length := int64(len(raw))
	sd := types.StreamDict{
		Dict: types.Dict{
			"Length": types.Integer(len(raw)),
			"Filter": types.Name("FlateDecode"),
		},
		FilterPipeline: []types.PDFFilter{{Name: "FlateDecode"}},
		Raw:            raw,
		StreamLength:   &length,
	}
	return AddObject(t, doc, sd)
}

// AddAcroForm installs an AcroForm whose Fields array lists fields
func AddAcroForm(t testing.TB, doc *document.Document, fields ...types.Object) types.Dict {
	t.Helper()

	catalog, err := doc.Catalog()
	require.NoError(t, err)

	acroForm := types.Dict{
		"Fields": types.Array(fields),
		"DA":     types.StringLiteral("/Helv 0 Tf 0 g"),
	}
	catalog["AcroForm"] = AddObject(t, doc, acroForm)
	return acroForm
}

// Lookup resolves a reference to a dictionary
func Lookup(t testing.TB, doc *document.Document, ref types.IndirectRef) types.Dict {
	t.Helper()

	dict, err := doc.Dict(ref)
	require.NoError(t, err)
	require.NotNil(t, dict)
	return dict
}

// StreamContent returns the current bytes of the stream ref points to
func StreamContent(t testing.TB, doc *document.Document, ref types.IndirectRef) []byte {
	t.Helper()

	sd, err := doc.Stream(ref)
	require.NoError(t, err)
	return sd.Raw
}

// Form holds the references of the sample form built by NewForm
type Form struct {
	Doc         *document.Document
	Text        types.IndirectRef
	CheckBox    types.IndirectRef
	CheckBoxOff types.IndirectRef // the N/Off appearance stream of CheckBox
	Radio       types.IndirectRef
	RadioKid    types.IndirectRef
}

// NewForm builds a document with a filled-in text field, a checked checkbox,
// a selected radio group, a launch OpenAction and populated document info.
func NewForm(t testing.TB) *Form {
	t.Helper()

	doc := NewDocument(t)
	f := &Form{Doc: doc}

	f.Text = AddObject(t, doc, types.Dict{
		"FT": types.Name("Tx"),
		"T":  types.StringLiteral("name"),
		"V":  types.StringLiteral("Jane Roe"),
		"DA": types.StringLiteral("/Cour 12 Tf 1 0 0 rg"),
		"AA": types.Dict{"K": types.Dict{"S": types.Name("JavaScript"), "JS": types.StringLiteral("app.alert(1)")}},
	})

	f.CheckBoxOff = AddStream(t, doc, []byte("0 g"))
	f.CheckBox = AddObject(t, doc, types.Dict{
		"FT": types.Name("Btn"),
		"T":  types.StringLiteral("agree"),
		"V":  types.Name("Yes"),
		"AS": types.Name("Yes"),
		"DA": types.StringLiteral("/ZaDb 0 Tf 0 g"),
		"MK": types.Dict{"CA": types.StringLiteral("4")},
		"AP": types.Dict{"N": types.Dict{
			"Off": f.CheckBoxOff,
			"Yes": AddStream(t, doc, []byte("0 g 1 1 m")),
		}},
	})

	f.RadioKid = AddObject(t, doc, types.Dict{
		"Subtype": types.Name("Widget"),
		"AS":      types.Name("Yes"),
		"DA":      types.StringLiteral("/ZaDb 0 Tf 0 g"),
		"BS":      types.Dict{"W": types.Integer(1)},
		"AP": types.Dict{"N": types.Dict{
			"Off": AddStream(t, doc, []byte("0 g")),
			"Yes": AddStream(t, doc, []byte("0 g 1 1 m")),
		}},
	})
	f.Radio = AddObject(t, doc, types.Dict{
		"FT":   types.Name("Btn"),
		"Ff":   types.Integer(1 << 15),
		"T":    types.StringLiteral("choice"),
		"V":    types.Name("Yes"),
		"Kids": types.Array{f.RadioKid},
	})

	AddAcroForm(t, doc, f.Text, f.CheckBox, f.Radio)

	catalog, err := doc.Catalog()
	require.NoError(t, err)
	catalog["OpenAction"] = AddObject(t, doc, types.Dict{
		"S": types.Name("Launch"),
		"F": types.StringLiteral("cmd.exe"),
	})

	info, err := doc.InfoDict()
	require.NoError(t, err)
	info["Author"] = types.StringLiteral("Jane Roe")
	info["Title"] = types.StringLiteral("Secret plan")
	info["Subject"] = types.StringLiteral("Acquisition")

	return f
}

// Save writes doc to path
func Save(t testing.TB, doc *document.Document, path string) {
	t.Helper()
	require.NoError(t, doc.Save(path))
}

// WriteFiles creates each named file in dir holding ResourceContent(name)
func WriteFiles(t testing.TB, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), ResourceContent(name), 0o600))
	}
}

// ResourceContent is the content WriteFiles stores for name
func ResourceContent(name string) []byte {
	return []byte("q " + name + " Q")
}
