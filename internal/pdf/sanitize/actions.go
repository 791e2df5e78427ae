// Package sanitize removes action triggers and identifying metadata from a document.
package sanitize

import (
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
)

// StripReport records what the action stripper removed
type StripReport struct {
	OpenActionRemoved     bool `json:"open_action_removed"`
	FieldActionsRemoved   int  `json:"field_actions_removed"`
	DocumentActionRemoved bool `json:"document_action_removed"`
	JavaScriptRemoved     bool `json:"javascript_removed"`
}

// ActionStripper removes automatic action triggers
type ActionStripper struct {
	logger               *log.Logger
	stripDocumentScripts bool
}

// NewActionStripper creates an action stripper. With stripDocumentScripts set it
// also drops the catalog AA entry and the document JavaScript name tree.
func NewActionStripper(logger *log.Logger, stripDocumentScripts bool) *ActionStripper {
	if logger == nil {
		logger = log.Default()
	}
	return &ActionStripper{
		logger:               logger,
		stripDocumentScripts: stripDocumentScripts,
	}
}

// Strip removes the catalog OpenAction and the A and AA entries of every
// top-level form field.
func (s *ActionStripper) Strip(doc *document.Document) (*StripReport, error) {
	report := &StripReport{}

	catalog, err := doc.Catalog()
	if err != nil {
		return report, err
	}

	if _, found := catalog.Find("OpenAction"); found {
		catalog.Delete("OpenAction")
		report.OpenActionRemoved = true
		s.logger.Println("Document OpenAction Removed")
	}

	if s.stripDocumentScripts {
		s.stripCatalogScripts(doc, catalog, report)
	}

	acroForm, err := doc.AcroForm()
	if err != nil || acroForm == nil {
		return report, err
	}

	for i := 0; i < acroForm.FieldCount(); i++ {
		fieldDict, _, err := acroForm.FieldAt(i)
		if err != nil {
			continue
		}
		for _, key := range []string{"A", "AA"} {
			if _, found := fieldDict.Find(key); found {
				fieldDict.Delete(key)
				report.FieldActionsRemoved++
			}
		}
	}

	return report, nil
}

func (s *ActionStripper) stripCatalogScripts(doc *document.Document, catalog types.Dict, report *StripReport) {
	if _, found := catalog.Find("AA"); found {
		catalog.Delete("AA")
		report.DocumentActionRemoved = true
		s.logger.Println("Document additional actions Removed")
	}

	namesObj, found := catalog.Find("Names")
	if !found {
		return
	}
	names, err := doc.Dict(namesObj)
	if err != nil || names == nil {
		return
	}
	if _, found := names.Find("JavaScript"); found {
		names.Delete("JavaScript")
		report.JavaScriptRemoved = true
		s.logger.Println("Document JavaScript Removed")
	}
}
