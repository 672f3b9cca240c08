package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, byte('6'), CheckDigit("L898902C3"))
	assert.Equal(t, byte('7'), CheckDigit("D23145890"))
	assert.Equal(t, byte('2'), CheckDigit("740812"))
	assert.Equal(t, byte('0'), CheckDigit("<<<<<<"))
}

func TestParseMRZ(t *testing.T) {
	t.Run("td3 passport", func(t *testing.T) {
		got, err := ParseMRZ([]string{
			"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
			"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
		})
		require.NoError(t, err)
		assert.Equal(t, "Anna Maria Eriksson", *got.FullName)
		assert.Equal(t, "L898902C3", *got.DocumentNumber)
		assert.Equal(t, "UTO", *got.Nationality)
		assert.Equal(t, "1974-08-12", *got.DOB)
		assert.Equal(t, "2012-04-15", *got.ExpiryDate)
		assert.Equal(t, SourceMRZ, got.Source)
	})

	t.Run("td2", func(t *testing.T) {
		got, err := ParseMRZ([]string{
			"I<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<",
			"D231458907UTO7408122F1204159<<<<<<<6",
		})
		require.NoError(t, err)
		assert.Equal(t, "Anna Maria Eriksson", *got.FullName)
		assert.Equal(t, "D23145890", *got.DocumentNumber)
		assert.Equal(t, "UTO", *got.Nationality)
	})

	t.Run("td1 id card", func(t *testing.T) {
		got, err := ParseMRZ([]string{
			"I<UTOD231458907<<<<<<<<<<<<<<<",
			"7408122F1204159UTO<<<<<<<<<<<6",
			"ERIKSSON<<ANNA<MARIA<<<<<<<<<<",
		})
		require.NoError(t, err)
		assert.Equal(t, "Anna Maria Eriksson", *got.FullName)
		assert.Equal(t, "D23145890", *got.DocumentNumber)
		assert.Equal(t, "UTO", *got.Nationality)
		assert.Equal(t, "1974-08-12", *got.DOB)
		assert.Equal(t, "2012-04-15", *got.ExpiryDate)
	})

	t.Run("bad document check digit drops only the number", func(t *testing.T) {
		got, err := ParseMRZ([]string{
			"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
			"L898902C35UTO7408122F1204159ZE184226B<<<<<10",
		})
		require.NoError(t, err)
		assert.Nil(t, got.DocumentNumber)
		assert.Equal(t, "Anna Maria Eriksson", *got.FullName)
		assert.Equal(t, "1974-08-12", *got.DOB)
	})

	t.Run("short ocr lines are padded", func(t *testing.T) {
		got, err := ParseMRZ([]string{
			"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<",
			"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
		})
		require.NoError(t, err)
		assert.Equal(t, "L898902C3", *got.DocumentNumber)
	})

	t.Run("century pivot", func(t *testing.T) {
		assert.Equal(t, "1931-01-01", *mrzDate("310101"))
		assert.Equal(t, "2030-01-01", *mrzDate("300101"))
		assert.Nil(t, mrzDate("30O101"))
		assert.Nil(t, mrzDate("301301"))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseMRZ([]string{"HELLO", "WORLD"})
		assert.ErrorIs(t, err, ErrNoMRZ)
		_, err = ParseMRZ(nil)
		assert.ErrorIs(t, err, ErrNoMRZ)
	})
}

func TestFindMRZ(t *testing.T) {
	text := "REPUBLIC OF UTOPIA\nPASSPORT\n" +
		"P<UTO ERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"l898902c36uto7408122f1204159ze184226b<<<<<10\n"

	lines := FindMRZ(text)
	require.Len(t, lines, 2)
	assert.Equal(t, "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<", lines[0])

	got, err := ParseMRZ(lines)
	require.NoError(t, err)
	assert.Equal(t, "L898902C3", *got.DocumentNumber)
}
