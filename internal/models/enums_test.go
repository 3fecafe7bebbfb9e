package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoseCatalogCoversAllTypes(t *testing.T) {
	assert.Len(t, DoseCatalog, 7)
	for _, d := range DoseCatalog {
		assert.True(t, d.Valid())
		assert.NotEqual(t, string(d), d.Label(), "every catalog dose has a display label")
	}
}

func TestParseDoseType(t *testing.T) {
	d, err := ParseDoseType("FIRST_BOOSTER")
	require.NoError(t, err)
	assert.Equal(t, DoseFirstBooster, d)

	_, err = ParseDoseType("FOURTH_DOSE")
	assert.Error(t, err)
}

func TestParseVaccineCategory(t *testing.T) {
	c, err := ParseVaccineCategory("SPECIAL_GROUPS")
	require.NoError(t, err)
	assert.Equal(t, CategorySpecialGrp, c)

	_, err = ParseVaccineCategory("routine")
	assert.Error(t, err)
}

func TestPageOfOne(t *testing.T) {
	page := PageOfOne(Person{ID: 7, Name: "Ana", CPF: "52998224725"})

	require.Len(t, page.Content, 1)
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 1, page.Size)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.True(t, page.First)
	assert.True(t, page.Last)
	assert.False(t, page.Empty)
}
