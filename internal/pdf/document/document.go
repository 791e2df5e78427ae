// Package document wraps the pdfcpu object model behind the small surface the
// normalizer needs: load and save, catalog and AcroForm access, reference
// resolution and appearance stream replacement.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

// Document owns a parsed PDF object graph
type Document struct {
	ctx *model.Context
}

// New wraps an existing pdfcpu context
func New(ctx *model.Context) *Document {
	return &Document{ctx: ctx}
}

// Load parses the PDF at path
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to open PDF file", err).WithFile(path)
	}
	defer file.Close()

	doc, err := LoadReader(file)
	if err != nil {
		var pdfErr *pdferrors.PDFError
		if errors.As(err, &pdfErr) {
			return nil, pdfErr.WithFile(path)
		}
		return nil, err
	}
	return doc, nil
}

// LoadReader parses a PDF from a seekable reader
func LoadReader(rs io.ReadSeeker) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to read PDF context", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to ensure page count", err)
	}

	return &Document{ctx: ctx}, nil
}

// Context exposes the underlying pdfcpu context
func (d *Document) Context() *model.Context {
	return d.ctx
}

// Save serializes the document to path. The file only appears once it has been
// written completely; the directory must already exist.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".normalize-*.pdf")
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "cannot create output file", err).WithFile(path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := api.WriteContext(d.ctx, tmp); err != nil {
		tmp.Close()
		return pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to write PDF", err).WithFile(path)
	}
	if err := tmp.Close(); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to write PDF", err).WithFile(path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "cannot move output into place", err).WithFile(path)
	}
	return nil
}

// Write serializes the document to w
func (d *Document) Write(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to write PDF", err)
	}
	return nil
}

// Catalog returns the document root dictionary
func (d *Document) Catalog() (types.Dict, error) {
	catalog, err := d.ctx.Catalog()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to get catalog", err)
	}
	return catalog, nil
}

// AcroForm returns the interactive form of the document, or nil if there is none
func (d *Document) AcroForm() (*AcroForm, error) {
	catalog, err := d.Catalog()
	if err != nil {
		return nil, err
	}

	acroFormObj, found := catalog.Find("AcroForm")
	if !found || acroFormObj == nil {
		return nil, nil
	}

	acroFormDict, err := d.ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeLibrary, "failed to dereference AcroForm", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	return &AcroForm{doc: d, dict: acroFormDict}, nil
}

// Dict resolves obj to a dictionary. A nil result with no error means obj
// resolved to nothing.
func (d *Document) Dict(obj types.Object) (types.Dict, error) {
	dict, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, err
	}
	return dict, nil
}

// Array resolves obj to an array
func (d *Document) Array(obj types.Object) (types.Array, error) {
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// Stream returns the stream object ref points to
func (d *Document) Stream(ref types.IndirectRef) (*types.StreamDict, error) {
	entry, found := d.ctx.FindTableEntryForIndRef(&ref)
	if !found || entry == nil || entry.Free || entry.Object == nil {
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeMissingObject,
			"reference does not resolve", ref.String()).WithObject(ref.ObjectNumber.Value())
	}

	switch sd := entry.Object.(type) {
	case types.StreamDict:
		return &sd, nil
	case *types.StreamDict:
		return sd, nil
	default:
		return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeMissingObject,
			"reference is not a stream", fmt.Sprintf("%s is %T", ref.String(), entry.Object)).WithObject(ref.ObjectNumber.Value())
	}
}

// ReplaceStreamContent swaps the bytes of the stream ref points to for data.
// The stream is stored unfiltered afterwards.
func (d *Document) ReplaceStreamContent(ref types.IndirectRef, data []byte) error {
	sd, err := d.Stream(ref)
	if err != nil {
		return err
	}

	content := make([]byte, len(data))
	copy(content, data)
	streamLength := int64(len(content))

	if sd.Dict == nil {
		sd.Dict = types.Dict{}
	}
	sd.FilterPipeline = nil
	sd.Dict.Delete("Filter")
	sd.Dict.Delete("DecodeParms")
	sd.Content = content
	sd.Raw = content
	sd.StreamLength = &streamLength
	sd.StreamLengthObjNr = nil
	sd.Dict["Length"] = types.Integer(len(content))

	entry, _ := d.ctx.FindTableEntryForIndRef(&ref)
	entry.Object = *sd
	return nil
}

// InfoDict returns the document information dictionary, creating it if needed
func (d *Document) InfoDict() (types.Dict, error) {
	if d.ctx.Info != nil {
		info, err := d.ctx.DereferenceDict(*d.ctx.Info)
		if err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidMetadata, "failed to dereference Info", err)
		}
		if info != nil {
			return info, nil
		}
	}

	info := types.Dict{}
	ref, err := d.ctx.IndRefForNewObject(info)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidMetadata, "failed to create Info", err)
	}
	d.ctx.Info = ref
	return info, nil
}
