package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "base_url", ToSnakeCase("BaseURL"))
	assert.Equal(t, "full_name", ToSnakeCase("FullName"))
	assert.Equal(t, "dob", ToSnakeCase("DOB"))
}

func TestTrimStrings(t *testing.T) {
	a, b := "  jane ", "doe\n"
	TrimStrings(&a, &b, nil)
	assert.Equal(t, "jane", a)
	assert.Equal(t, "doe", b)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "JANE DOE", CollapseSpaces("  JANE \t  DOE "))
	assert.Empty(t, CollapseSpaces("   "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Nil(t, SplitList(""))
}
