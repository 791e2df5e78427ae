package sanitize

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/pdftest"
)

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"in/form.pdf", "form.pdf"},
		{"/abs/dir/form.pdf", "form.pdf"},
		{`C:\forms\w9.pdf`, "w9.pdf"},
		{`mixed/dir\form.pdf`, "form.pdf"},
		{"form.pdf", "form.pdf"},
		{"dir/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromPath(tt.path))
		})
	}
}

func TestClear(t *testing.T) {
	doc := pdftest.NewDocument(t)
	info, err := doc.InfoDict()
	require.NoError(t, err)
	info["Author"] = types.StringLiteral("Jane Roe")
	info["Creator"] = types.StringLiteral("Word")
	info["Producer"] = types.StringLiteral("Distiller")
	info["Title"] = types.StringLiteral("Secret plan")
	info["CreationDate"] = types.StringLiteral("D:20200101000000Z")

	require.NoError(t, NewMetadataClearer(false).Clear(doc, "uploads/in.pdf"))

	info, err = doc.InfoDict()
	require.NoError(t, err)
	for _, key := range []string{"Author", "Creator", "Keywords", "Producer", "Subject"} {
		assert.Equal(t, types.StringLiteral(""), info[key], key)
	}
	assert.Equal(t, types.StringLiteral("in.pdf"), info["Title"])
	assert.Equal(t, types.StringLiteral("D:20200101000000Z"), info["CreationDate"])
	assert.Equal(t, "in.pdf", doc.Context().Title)
	assert.Empty(t, doc.Context().Author)
}

func TestClear_CreatesInfo(t *testing.T) {
	doc := pdftest.NewDocument(t)
	doc.Context().Info = nil

	require.NoError(t, NewMetadataClearer(false).Clear(doc, "a.pdf"))
	require.NotNil(t, doc.Context().Info)

	info, err := doc.InfoDict()
	require.NoError(t, err)
	assert.Equal(t, types.StringLiteral("a.pdf"), info["Title"])
}

func TestClear_XMP(t *testing.T) {
	for _, strip := range []bool{false, true} {
		doc := pdftest.NewDocument(t)
		catalog, err := doc.Catalog()
		require.NoError(t, err)
		catalog["Metadata"] = pdftest.AddStream(t, doc, []byte("<x:xmpmeta/>"))

		require.NoError(t, NewMetadataClearer(strip).Clear(doc, "a.pdf"))
		if strip {
			assert.NotContains(t, catalog, "Metadata")
		} else {
			assert.Contains(t, catalog, "Metadata")
		}
	}
}

func TestEncodeTextString(t *testing.T) {
	obj, err := encodeTextString("plain name.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.StringLiteral("plain name.pdf"), obj)

	// "é" as a combining sequence is composed first
	obj, err = encodeTextString("re\u0301sume\u0301.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.HexLiteral("FEFF007200E900730075006D00E9002E007000640066"), obj)

	obj, err = encodeTextString("a(b).pdf")
	require.NoError(t, err)
	assert.IsType(t, types.HexLiteral(""), obj)
}
