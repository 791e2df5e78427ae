package sanitize

import (
	"encoding/hex"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

// blankedInfoKeys are emptied on every run
var blankedInfoKeys = []string{"Author", "Creator", "Keywords", "Producer", "Subject"}

// MetadataClearer blanks identifying document information
type MetadataClearer struct {
	stripXMP bool
}

// NewMetadataClearer creates a metadata clearer. With stripXMP set the catalog
// XMP Metadata stream is dropped as well.
func NewMetadataClearer(stripXMP bool) *MetadataClearer {
	return &MetadataClearer{stripXMP: stripXMP}
}

// Clear empties Author, Creator, Keywords, Producer and Subject and sets Title
// to the base name of inputPath.
func (c *MetadataClearer) Clear(doc *document.Document, inputPath string) error {
	info, err := doc.InfoDict()
	if err != nil {
		return err
	}

	for _, key := range blankedInfoKeys {
		info[key] = types.StringLiteral("")
	}

	title := TitleFromPath(inputPath)
	encoded, err := encodeTextString(title)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidMetadata, "cannot encode title", err).WithContext(title)
	}
	info["Title"] = encoded

	ctx := doc.Context()
	ctx.Author = ""
	ctx.Creator = ""
	ctx.Producer = ""
	ctx.Subject = ""
	ctx.Keywords = ""
	ctx.Title = title

	if c.stripXMP {
		catalog, err := doc.Catalog()
		if err != nil {
			return err
		}
		catalog.Delete("Metadata")
	}

	return nil
}

// TitleFromPath returns the part of path after the last slash or backslash
func TitleFromPath(path string) string {
	if pos := strings.LastIndexAny(path, `/\`); pos >= 0 {
		return path[pos+1:]
	}
	return path
}

// encodeTextString renders s as a PDF text string. Plain ASCII without
// delimiters stays a literal; anything else becomes UTF-16BE with a BOM.
func encodeTextString(s string) (types.Object, error) {
	s = norm.NFC.String(s)
	if isPlainLiteral(s) {
		return types.StringLiteral(s), nil
	}

	encoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	utf16, err := encoder.Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(utf16))), nil
}

func isPlainLiteral(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 || b > 0x7e || b == '(' || b == ')' || b == '\\' {
			return false
		}
	}
	return true
}
