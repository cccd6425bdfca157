package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, "2025-01", p.AsOf())
	assert.Len(t, p.Countries(), 26)

	india, err := p.Lookup("India")
	require.NoError(t, err)
	assert.Equal(t, 7.26, india.ERP)
	assert.Equal(t, 2.93, india.CRP)
	assert.Equal(t, 6.92, india.RF)
	assert.InDelta(t, 4.33, india.MatureERP(), 1e-9)
}

func TestCountriesSorted(t *testing.T) {
	names := Default().Countries()
	require.NotEmpty(t, names)
	assert.Equal(t, "Argentina", names[0])
	assert.Equal(t, "United States", names[len(names)-1])
	assert.IsNonDecreasing(t, names)
}

func TestLookup(t *testing.T) {
	p := Default()

	c, err := p.Lookup("  south korea ")
	require.NoError(t, err)
	assert.Equal(t, "South Korea", c.Country)

	_, err = p.Lookup("Atlantis")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestMatureMarketERP(t *testing.T) {
	erp, err := MatureMarketERP(Default())
	require.NoError(t, err)
	assert.InDelta(t, 4.33, erp, 1e-9)

	_, err = MatureMarketERP(NewStaticProvider("", nil))
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yaml")
	override := `as_of: "2025-07"
countries:
  - {country: India, erp: 7.50, crp: 3.10, rf: 6.50}
  - {country: Vietnam, erp: 8.00, crp: 3.67, rf: 3.00}
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2025-07", p.AsOf())
	assert.Len(t, p.Countries(), 27)

	india, err := p.Lookup("India")
	require.NoError(t, err)
	assert.Equal(t, 6.50, india.RF)

	_, err = p.Lookup("Vietnam")
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("countries: []\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestMergePremiums(t *testing.T) {
	p := Default()

	n := p.MergePremiums("2025-07", []Premium{
		{Country: "India", ERP: 7.40, CRP: 3.00},
		{Country: "Atlantis", ERP: 9, CRP: 5},
	})
	assert.Equal(t, 1, n)
	assert.Equal(t, "2025-07", p.AsOf())

	india, err := p.Lookup("India")
	require.NoError(t, err)
	assert.Equal(t, 7.40, india.ERP)
	assert.Equal(t, 3.00, india.CRP)
	assert.Equal(t, 6.92, india.RF)

	_, err = p.Lookup("Atlantis")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	p := Default()

	data, err := p.Encode()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p.Entries(), back.Entries())
	assert.Equal(t, p.AsOf(), back.AsOf())
}
