package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestMerge(t *testing.T) {
	t.Run("mrz document number marks source mrz", func(t *testing.T) {
		got := Merge(Fields{DocumentNumber: str("AB123456")}, Fields{}, Overrides{})
		assert.Equal(t, SourceMRZ, got.Source)
		assert.Equal(t, "AB123456", *got.DocumentNumber)
	})

	t.Run("ocr document number keeps source ocr", func(t *testing.T) {
		got := Merge(Fields{FullName: str("Anna Eriksson")}, Fields{DocumentNumber: str("X1234567")}, Overrides{})
		assert.Equal(t, SourceOCR, got.Source)
		assert.Equal(t, "X1234567", *got.DocumentNumber)
		assert.Equal(t, "Anna Eriksson", *got.FullName)
	})

	t.Run("priority is mrz then ocr then override", func(t *testing.T) {
		got := Merge(
			Fields{DOB: str("1974-08-12")},
			Fields{DOB: str("1999-01-01"), FullName: str("Ocr Name")},
			Overrides{FullName: str("Caller Name"), DOB: str("2000-02-02")},
		)
		assert.Equal(t, "1974-08-12", *got.DOB)
		assert.Equal(t, "Ocr Name", *got.FullName)
	})

	t.Run("overrides fill gaps", func(t *testing.T) {
		got := Merge(Fields{}, Fields{}, Overrides{FullName: str("Caller Name"), DOB: str("2000-02-02")})
		assert.Equal(t, "Caller Name", *got.FullName)
		assert.Equal(t, "2000-02-02", *got.DOB)
		assert.Nil(t, got.DocumentNumber)
		assert.Equal(t, SourceOCR, got.Source)
	})

	t.Run("address only comes from ocr", func(t *testing.T) {
		got := Merge(Fields{Address: str("mrz street")}, Fields{}, Overrides{})
		assert.Nil(t, got.Address)

		got = Merge(Fields{Address: str("mrz street")}, Fields{Address: str("1 Main St")}, Overrides{})
		assert.Equal(t, "1 Main St", *got.Address)
	})

	t.Run("blank values count as absent", func(t *testing.T) {
		got := Merge(Fields{FullName: str("  "), DocumentNumber: str("")}, Fields{FullName: str("Jane Doe")}, Overrides{})
		assert.Equal(t, "Jane Doe", *got.FullName)
		assert.Equal(t, SourceOCR, got.Source)
	})

	t.Run("nothing found is not an error", func(t *testing.T) {
		got := Merge(Fields{}, Fields{}, Overrides{})
		assert.True(t, got.IsEmpty())
		assert.Equal(t, SourceOCR, got.Source)
	})
}
