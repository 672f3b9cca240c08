// Package document extracts identity fields from document images.
//
// Fields come from two passes over the front of the document: the machine
// readable zone (MRZ) when one can be read, and free-text OCR over every
// supplied page. Merge combines them with caller overrides.
package document

import "strings"

const (
	SourceMRZ = "mrz"
	SourceOCR = "ocr"
)

// Fields holds extracted identity fields. Nil means absent.
type Fields struct {
	FullName       *string
	DOB            *string // YYYY-MM-DD where possible
	DocumentNumber *string
	Nationality    *string
	ExpiryDate     *string
	Address        *string
	Source         string
}

// Overrides carries caller-supplied values used when extraction finds nothing.
type Overrides struct {
	FullName *string
	DOB      *string
}

// MergeFields combines records in priority order; per field the first
// non-empty value wins.
func MergeFields(records ...Fields) Fields {
	var out Fields
	for _, r := range records {
		out.FullName = firstSet(out.FullName, r.FullName)
		out.DOB = firstSet(out.DOB, r.DOB)
		out.DocumentNumber = firstSet(out.DocumentNumber, r.DocumentNumber)
		out.Nationality = firstSet(out.Nationality, r.Nationality)
		out.ExpiryDate = firstSet(out.ExpiryDate, r.ExpiryDate)
		out.Address = firstSet(out.Address, r.Address)
	}
	return out
}

// Merge applies the extraction priority: MRZ, then OCR, then overrides for
// name and date of birth. Address only ever comes from OCR. Source is "mrz"
// when the MRZ produced a document number, otherwise "ocr".
func Merge(mrz, ocr Fields, overrides Overrides) Fields {
	mrz.Address = nil
	out := MergeFields(mrz, ocr, Fields{FullName: overrides.FullName, DOB: overrides.DOB})
	out.Address = present(ocr.Address)
	out.Source = SourceOCR
	if present(mrz.DocumentNumber) != nil {
		out.Source = SourceMRZ
	}
	return out
}

// IsEmpty reports whether no field was extracted.
func (f Fields) IsEmpty() bool {
	return present(f.FullName) == nil &&
		present(f.DOB) == nil &&
		present(f.DocumentNumber) == nil &&
		present(f.Nationality) == nil &&
		present(f.ExpiryDate) == nil &&
		present(f.Address) == nil
}

func firstSet(current, candidate *string) *string {
	if current != nil {
		return current
	}
	return present(candidate)
}

func present(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
