// Package normalize rewrites AcroForm fields so that every form renders with
// blank values, a standard font and color, and stock appearance streams.
package normalize

import (
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/pdf-form-normalizer/internal/pdf/document"
	pdferrors "github.com/a3tai/pdf-form-normalizer/internal/pdf/errors"
)

const (
	// HelveticaAppearance is the default appearance for text, checkbox and radio fields
	HelveticaAppearance = "/Helv 0 Tf 0 0 1 rg"
	// ZapfDingbatsAppearance is the default appearance for radio button widgets
	ZapfDingbatsAppearance = "/Zadb 0 Tf 0 0 1 rg"
)

var (
	checkBoxStates    = []State{StateOff, StateYes}
	radioButtonStates = []State{StateOff, StateYes, StateNo}
	appearanceKinds   = []AppearanceKind{AppearanceNormal, AppearanceDown}
)

// Report summarizes one normalization pass
type Report struct {
	AcroFormFound   bool              `json:"acroform_found"`
	FieldCount      int               `json:"field_count"`
	Fields          map[FieldKind]int `json:"fields"`
	KidsNormalized  int               `json:"kids_normalized"`
	StreamsReplaced int               `json:"streams_replaced"`
	Skipped         []string          `json:"skipped,omitempty"`
}

// Normalizer applies the per-kind field policies to a document
type Normalizer struct {
	resources *ResourceTable
	logger    *log.Logger
	debugMode bool
}

// NewNormalizer creates a normalizer reading replacement streams from resources.
// A nil logger logs through the standard logger.
func NewNormalizer(resources *ResourceTable, logger *log.Logger, debugMode bool) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{
		resources: resources,
		logger:    logger,
		debugMode: debugMode,
	}
}

// pass carries the state of a single Normalize call
type pass struct {
	n      *Normalizer
	doc    *document.Document
	report *Report
}

// Normalize walks every top-level field of the document's AcroForm. A
// document without a form, or a form without a Fields array, is left alone.
// Malformed checkbox/radio fields and unreadable resources abort the pass.
func (n *Normalizer) Normalize(doc *document.Document) (*Report, error) {
	report := &Report{Fields: make(map[FieldKind]int)}

	acroForm, err := doc.AcroForm()
	if err != nil {
		return report, err
	}
	if acroForm == nil {
		n.logger.Println("No AcroForm found in this document.")
		return report, nil
	}
	report.AcroFormFound = true

	fields, found := acroForm.Fields()
	if !found {
		n.logger.Println("No Fields found in this document")
		return report, nil
	}
	report.FieldCount = len(fields)

	p := &pass{n: n, doc: doc, report: report}
	for i := 0; i < len(fields); i++ {
		fieldDict, _, err := acroForm.FieldAt(i)
		if err != nil {
			p.skip(i, err.Error())
			continue
		}

		if n.debugMode {
			n.logger.Printf("field %d: %s", i, fieldDict)
		}

		kind := ClassifyField(doc, fieldDict)
		report.Fields[kind]++
		if err := p.normalizeField(i, kind, fieldDict); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (p *pass) normalizeField(index int, kind FieldKind, fieldDict types.Dict) error {
	switch kind {
	case FieldKindTextBox:
		p.normalizeTextBox(fieldDict)
		return nil
	case FieldKindCheckBox:
		return p.normalizeCheckBox(index, fieldDict)
	case FieldKindRadioButton:
		return p.normalizeRadioButton(index, fieldDict)
	default:
		return nil
	}
}

// normalizeTextBox blanks the value and drops cached appearance and styling
func (p *pass) normalizeTextBox(dict types.Dict) {
	setIfPresent(dict, "DA", types.StringLiteral(HelveticaAppearance))
	setIfPresent(dict, "V", types.StringLiteral(""))
	removeIfPresent(dict, "MK")
	removeIfPresent(dict, "AP")
}

func (p *pass) normalizeCheckBox(index int, dict types.Dict) error {
	if _, hasState := dict.Find("AS"); hasState {
		turnOff(dict)
	} else if err := p.normalizeCheckBoxKid(index, dict); err != nil {
		return err
	}

	removeIfPresent(dict, "V")
	setIfPresent(dict, "DA", types.StringLiteral(HelveticaAppearance))

	if mk := p.subDict(dict, "MK"); mk != nil {
		applyCheckBoxCharacteristics(mk)
	}

	if ap := p.subDict(dict, "AP"); ap != nil {
		return p.replaceAppearances(index, FieldKindCheckBox, ap, checkBoxStates)
	}
	return nil
}

// normalizeCheckBoxKid handles a checkbox whose state lives on its only widget
func (p *pass) normalizeCheckBoxKid(index int, dict types.Dict) error {
	kids, ok := p.kids(dict)
	if !ok {
		p.n.logger.Println("No Kids found in this document")
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedForm,
			"checkbox has neither an appearance state nor kids").WithField(index)
	}

	if len(kids) != 1 {
		p.skip(index, fmt.Sprintf("checkbox has %d kids, expected exactly one", len(kids)))
		return nil
	}

	kid := p.kid(index, kids[0])
	if kid == nil {
		return nil
	}

	if _, found := kid.Find("AS"); found {
		kid["AS"] = types.Name(StateOff)
	}
	setIfPresent(kid, "V", types.StringLiteral(""))
	if mk := p.subDict(kid, "MK"); mk != nil {
		applyCheckBoxCharacteristics(mk)
	}
	p.report.KidsNormalized++
	return nil
}

func (p *pass) normalizeRadioButton(index int, dict types.Dict) error {
	setIfPresent(dict, "DA", types.StringLiteral(HelveticaAppearance))
	removeIfPresent(dict, "V")

	kids, ok := p.kids(dict)
	if !ok {
		p.n.logger.Println("No Kids found in this document")
		return pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedForm,
			"radio button has no kids").WithField(index)
	}

	for _, kidObj := range kids {
		kid := p.kid(index, kidObj)
		if kid == nil {
			continue
		}

		setIfPresent(kid, "DA", types.StringLiteral(ZapfDingbatsAppearance))
		turnOff(kid)
		removeIfPresent(kid, "BS")
		if mk := p.subDict(kid, "MK"); mk != nil {
			applyRadioCharacteristics(mk)
		}

		if ap := p.subDict(kid, "AP"); ap != nil {
			if err := p.replaceAppearances(index, FieldKindRadioButton, ap, radioButtonStates); err != nil {
				return err
			}
		}
		p.report.KidsNormalized++
	}
	return nil
}

// replaceAppearances swaps every referenced N and D state stream listed in
// states for the matching resource file.
func (p *pass) replaceAppearances(index int, kind FieldKind, ap types.Dict, states []State) error {
	for _, appearance := range appearanceKinds {
		stateDict := p.subDict(ap, string(appearance))
		if stateDict == nil {
			continue
		}

		for _, state := range states {
			obj, found := stateDict.Find(string(state))
			if !found {
				continue
			}
			ref, ok := obj.(types.IndirectRef)
			if !ok {
				continue
			}

			if _, err := p.doc.Stream(ref); err != nil {
				p.skip(index, err.Error())
				continue
			}

			data, err := p.n.resources.Read(ResourceKey{Kind: kind, Appearance: appearance, State: state})
			if err != nil {
				return err
			}
			if err := p.doc.ReplaceStreamContent(ref, data); err != nil {
				return err
			}
			p.report.StreamsReplaced++
		}
	}
	return nil
}

// kids resolves the Kids array of dict. ok is false when it is missing or not an array.
func (p *pass) kids(dict types.Dict) (types.Array, bool) {
	kidsObj, found := dict.Find("Kids")
	if !found || kidsObj == nil {
		return nil, false
	}
	kids, err := p.doc.Array(kidsObj)
	if err != nil {
		return nil, false
	}
	return kids, true
}

// kid resolves a Kids entry to its dictionary; direct and dangling entries are skipped
func (p *pass) kid(index int, kidObj types.Object) types.Dict {
	ref, ok := kidObj.(types.IndirectRef)
	if !ok {
		return nil
	}
	kid, err := p.doc.Dict(ref)
	if err != nil || kid == nil {
		p.skip(index, fmt.Sprintf("kid %s does not resolve to a dictionary", ref))
		return nil
	}
	return kid
}

// subDict resolves dict[key] to a dictionary, or nil
func (p *pass) subDict(dict types.Dict, key string) types.Dict {
	obj, found := dict.Find(key)
	if !found || obj == nil {
		return nil
	}
	sub, err := p.doc.Dict(obj)
	if err != nil {
		return nil
	}
	return sub
}

func (p *pass) skip(index int, reason string) {
	msg := fmt.Sprintf("field %d: %s", index, reason)
	p.report.Skipped = append(p.report.Skipped, msg)
	p.n.logger.Printf("Skipping %s", msg)
}

// applyCheckBoxCharacteristics resets border and background colors and drops the caption
func applyCheckBoxCharacteristics(mk types.Dict) {
	mk["BC"] = types.Array{types.Float(0.0)}
	mk["BG"] = types.Array{types.Float(1.0)}
	removeIfPresent(mk, "CA")
}

// applyRadioCharacteristics resets colors only for widgets that carry a caption
func applyRadioCharacteristics(mk types.Dict) {
	if _, found := mk.Find("CA"); !found {
		return
	}
	mk["BC"] = types.Array{types.Float(0.0)}
	mk["BG"] = types.Array{types.Float(1.0)}
	mk.Delete("CA")
}

// turnOff sets AS to Off when it holds any other name
func turnOff(dict types.Dict) {
	obj, found := dict.Find("AS")
	if !found {
		return
	}
	if name, ok := obj.(types.Name); ok && string(name) != string(StateOff) {
		dict["AS"] = types.Name(StateOff)
	}
}

func setIfPresent(dict types.Dict, key string, value types.Object) {
	if _, found := dict.Find(key); found {
		dict[key] = value
	}
}

func removeIfPresent(dict types.Dict, key string) {
	if _, found := dict.Find(key); found {
		dict.Delete(key)
	}
}
