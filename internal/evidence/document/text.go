package document

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	strutil "kycgate/pkg/string"
)

var (
	namePattern = regexp.MustCompile(`\b([A-Z]{2,}(?:\s+[A-Z]{2,}){1,3})\b`)

	dobPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4}[-/.]\d{2}[-/.]\d{2})`),
		regexp.MustCompile(`(\d{2}[-/.]\d{2}[-/.]\d{4})`),
	}
	docNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z]{1,2}\d{6,9})\b`),
		regexp.MustCompile(`\b(\d{8,10})\b`),
	}

	nationalityPattern = regexp.MustCompile(`(?i)\b(Nationality|Citizenship)\s*[:\-]?\s*([A-Z]{3,})\b`)
	expiryPattern      = regexp.MustCompile(`(?i)(Expiry|Expires|Valid\s*Until)\s*[:\-]?\s*([0-9./-]{8,10})`)
	addressPattern     = regexp.MustCompile(`(?i)(Address|Residence)\s*[:\-]?\s*(.+)$`)

	isoDatePattern = regexp.MustCompile(`^(\d{4})[-/.](\d{2})[-/.](\d{2})`)
	dmyDatePattern = regexp.MustCompile(`^(\d{2})[-/.](\d{2})[-/.](\d{4})`)
)

// ParseText pulls identity fields out of free OCR text. Whitespace, line
// breaks included, is folded to single spaces before matching.
func ParseText(text string) Fields {
	text = strutil.CollapseSpaces(text)
	var f Fields
	if text == "" {
		return f
	}

	if m := namePattern.FindStringSubmatch(text); m != nil {
		f.FullName = ptr(titleCase(m[1]))
	}

	for _, p := range dobPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			f.DOB = ptr(NormalizeDate(m[1]))
			break
		}
	}

	for _, p := range docNumberPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			f.DocumentNumber = ptr(m[1])
			break
		}
	}

	if m := nationalityPattern.FindStringSubmatch(text); m != nil {
		f.Nationality = ptr(strings.ToUpper(m[2]))
	}

	if m := expiryPattern.FindStringSubmatch(text); m != nil {
		if normalized := NormalizeDate(m[2]); normalized != "" {
			f.ExpiryDate = ptr(normalized)
		} else {
			f.ExpiryDate = ptr(m[2])
		}
	}

	if m := addressPattern.FindStringSubmatch(text); m != nil {
		f.Address = ptr(strings.TrimSpace(m[2]))
	}

	return f
}

// NormalizeDate rewrites YYYY-MM-DD or DD-MM-YYYY (any of - / . as
// separator) to YYYY-MM-DD. Unrecognised input yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	if m := dmyDatePattern.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return ""
}

// titleCase builds a caser per call; cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(s))
}
