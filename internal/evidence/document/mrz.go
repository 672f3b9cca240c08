package document

import (
	"errors"
	"regexp"
	"strings"

	strutil "kycgate/pkg/string"
)

// MRZ layouts from ICAO 9303.
const (
	td1LineLen = 30
	td2LineLen = 36
	td3LineLen = 44

	// lineSlack is how far an OCR'd line may deviate from its nominal length
	// before it is rejected rather than padded or trimmed.
	lineSlack = 2
)

// ErrNoMRZ is returned when the lines do not form a recognisable MRZ.
var ErrNoMRZ = errors.New("no machine readable zone found")

var mrzLinePattern = regexp.MustCompile(`^[A-Z0-9<]{26,48}$`)

// FindMRZ locates candidate MRZ lines in raw OCR text. Spaces inside lines
// are removed and letters upper-cased; only lines containing a filler are kept.
func FindMRZ(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
		line = strings.ReplaceAll(line, "«", "<")
		if strings.Contains(line, "<") && mrzLinePattern.MatchString(line) {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseMRZ parses TD1 (3x30), TD2 (2x36) or TD3 (2x44) zones. When more
// lines are supplied the trailing ones are used. A document number whose
// check digit fails is dropped; other fields are kept.
func ParseMRZ(lines []string) (Fields, error) {
	if n := len(lines); n >= 3 {
		if tail, ok := fit(lines[n-3:], td1LineLen); ok {
			return parseTD1(tail), nil
		}
	}
	if n := len(lines); n >= 2 {
		if tail, ok := fit(lines[n-2:], td3LineLen); ok {
			return parseTD3(tail), nil
		}
		if tail, ok := fit(lines[n-2:], td2LineLen); ok {
			return parseTD2(tail), nil
		}
	}
	return Fields{}, ErrNoMRZ
}

// fit pads or trims each line to width when it is within lineSlack.
func fit(lines []string, width int) ([]string, bool) {
	out := make([]string, len(lines))
	for i, l := range lines {
		d := len(l) - width
		if d < -lineSlack || d > lineSlack {
			return nil, false
		}
		if d < 0 {
			l += strings.Repeat("<", -d)
		}
		out[i] = l[:width]
	}
	return out, true
}

func parseTD3(l []string) Fields {
	return Fields{
		FullName:       mrzName(l[0][5:]),
		DocumentNumber: checkedField(l[1][0:9], l[1][9]),
		Nationality:    mrzCode(l[1][10:13]),
		DOB:            mrzDate(l[1][13:19]),
		ExpiryDate:     mrzDate(l[1][21:27]),
		Source:         SourceMRZ,
	}
}

func parseTD2(l []string) Fields {
	return Fields{
		FullName:       mrzName(l[0][5:]),
		DocumentNumber: checkedField(l[1][0:9], l[1][9]),
		Nationality:    mrzCode(l[1][10:13]),
		DOB:            mrzDate(l[1][13:19]),
		ExpiryDate:     mrzDate(l[1][21:27]),
		Source:         SourceMRZ,
	}
}

func parseTD1(l []string) Fields {
	return Fields{
		DocumentNumber: checkedField(l[0][5:14], l[0][14]),
		DOB:            mrzDate(l[1][0:6]),
		ExpiryDate:     mrzDate(l[1][8:14]),
		Nationality:    mrzCode(l[1][15:18]),
		FullName:       mrzName(l[2]),
		Source:         SourceMRZ,
	}
}

// mrzName turns SURNAME<<GIVEN<NAMES into "Given Names Surname".
func mrzName(field string) *string {
	surname, given, _ := strings.Cut(strings.Trim(field, "<"), "<<")
	surname = strings.TrimSpace(strings.ReplaceAll(surname, "<", " "))
	given = strings.TrimSpace(strings.ReplaceAll(given, "<", " "))
	name := strutil.CollapseSpaces(given + " " + surname)
	if name == "" {
		return nil
	}
	return ptr(titleCase(name))
}

func mrzCode(field string) *string {
	return ptr(strings.Trim(field, "<"))
}

// mrzDate converts YYMMDD; years above 30 are 19xx, the rest 20xx.
func mrzDate(field string) *string {
	if len(field) != 6 {
		return nil
	}
	for i := 0; i < 6; i++ {
		if field[i] < '0' || field[i] > '9' {
			return nil
		}
	}
	yy, mm, dd := field[0:2], field[2:4], field[4:6]
	if mm < "01" || mm > "12" || dd < "01" || dd > "31" {
		return nil
	}
	century := "20"
	if yy > "30" {
		century = "19"
	}
	return ptr(century + yy + "-" + mm + "-" + dd)
}

func checkedField(field string, check byte) *string {
	value := strings.Trim(field, "<")
	if value == "" || CheckDigit(field) != check {
		return nil
	}
	return ptr(value)
}

// CheckDigit computes the ICAO 9303 check digit (weights 7, 3, 1) of field.
// Digits count as their value, letters A-Z as 10-35 and fillers as 0.
func CheckDigit(field string) byte {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * weights[i%3]
	}
	return byte('0' + sum%10)
}
