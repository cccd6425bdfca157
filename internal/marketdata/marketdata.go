// Package marketdata provides country market assumptions: equity risk
// premium, country risk premium and a default risk-free rate.
package marketdata

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCountry country not in the table
var ErrUnknownCountry = errors.New("unknown country")

// ReferenceCountry mature-market reference (CRP = 0)
const ReferenceCountry = "United States"

//go:embed countries.yaml
var defaultTable []byte

// CountryRiskData market assumptions for one country, in percent
type CountryRiskData struct {
	Country string  `yaml:"country" json:"country"`
	ERP     float64 `yaml:"erp" json:"erp"` // mature ERP + CRP
	CRP     float64 `yaml:"crp" json:"crp"`
	RF      float64 `yaml:"rf" json:"rf"`
}

// MatureERP ERP - CRP
func (c CountryRiskData) MatureERP() float64 {
	return c.ERP - c.CRP
}

// Provider country lookup
// ⭐ SSOT: 시장 가정은 Provider를 통해서만 조회 (코어에 주입)
type Provider interface {
	Lookup(country string) (CountryRiskData, error)
	Countries() []string
}

type tableFile struct {
	AsOf      string            `yaml:"as_of"`
	Countries []CountryRiskData `yaml:"countries"`
}

// StaticProvider in-memory table, safe for concurrent use
type StaticProvider struct {
	mu   sync.RWMutex
	asOf string
	data map[string]CountryRiskData
}

// NewStaticProvider builds a provider from entries
func NewStaticProvider(asOf string, entries []CountryRiskData) *StaticProvider {
	p := &StaticProvider{asOf: asOf, data: make(map[string]CountryRiskData, len(entries))}
	for _, e := range entries {
		p.data[e.Country] = e
	}
	return p
}

// Default returns a provider seeded from the built-in January 2025 table
func Default() *StaticProvider {
	p, err := Parse(defaultTable)
	if err != nil {
		// 내장 테이블은 빌드 시점에 고정
		panic(fmt.Sprintf("marketdata: invalid built-in table: %v", err))
	}
	return p
}

// Parse decodes a YAML country table
func Parse(data []byte) (*StaticProvider, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("decode country table: %w", err)
	}
	if len(tf.Countries) == 0 {
		return nil, fmt.Errorf("country table has no entries")
	}
	for _, c := range tf.Countries {
		if strings.TrimSpace(c.Country) == "" {
			return nil, fmt.Errorf("country table entry without a name")
		}
	}
	return NewStaticProvider(tf.AsOf, tf.Countries), nil
}

// Load starts from the built-in table and overlays the YAML file at path.
// An empty path returns the built-in table.
func Load(path string) (*StaticProvider, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country table %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}

	p.Upsert(override.Entries()...)
	if override.AsOf() != "" {
		p.SetAsOf(override.AsOf())
	}
	return p, nil
}

// Lookup exact name first, then case-insensitive
func (p *StaticProvider) Lookup(country string) (CountryRiskData, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if c, ok := p.data[country]; ok {
		return c, nil
	}
	want := strings.TrimSpace(country)
	for name, c := range p.data {
		if strings.EqualFold(name, want) {
			return c, nil
		}
	}
	return CountryRiskData{}, fmt.Errorf("%w: %s", ErrUnknownCountry, country)
}

// Countries sorted country names
func (p *StaticProvider) Countries() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.data))
	for name := range p.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries all rows sorted by country
func (p *StaticProvider) Entries() []CountryRiskData {
	names := p.Countries()

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]CountryRiskData, 0, len(names))
	for _, n := range names {
		out = append(out, p.data[n])
	}
	return out
}

// AsOf table vintage, e.g. "2025-01"
func (p *StaticProvider) AsOf() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.asOf
}

// SetAsOf sets the table vintage
func (p *StaticProvider) SetAsOf(asOf string) {
	p.mu.Lock()
	p.asOf = asOf
	p.mu.Unlock()
}

// Upsert replaces or adds entries
func (p *StaticProvider) Upsert(entries ...CountryRiskData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range entries {
		p.data[e.Country] = e
	}
}

// Premium ERP/CRP pair from an external refresh
type Premium struct {
	Country string
	ERP     float64
	CRP     float64
}

// MergePremiums updates ERP/CRP of known countries, keeping their risk-free rate.
// Unknown countries are skipped. Returns the number of updated rows.
func (p *StaticProvider) MergePremiums(asOf string, premiums []Premium) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	updated := 0
	for _, pr := range premiums {
		cur, ok := p.data[pr.Country]
		if !ok {
			continue
		}
		cur.ERP = pr.ERP
		cur.CRP = pr.CRP
		p.data[pr.Country] = cur
		updated++
	}
	if updated > 0 && asOf != "" {
		p.asOf = asOf
	}
	return updated
}

// MatureMarketERP ERP - CRP of the reference country
func MatureMarketERP(p Provider) (float64, error) {
	c, err := p.Lookup(ReferenceCountry)
	if err != nil {
		return 0, err
	}
	return c.MatureERP(), nil
}

// Encode renders the provider as YAML in the same layout Parse reads
func (p *StaticProvider) Encode() ([]byte, error) {
	return yaml.Marshal(tableFile{AsOf: p.AsOf(), Countries: p.Entries()})
}
