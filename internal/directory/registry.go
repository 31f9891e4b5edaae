package directory

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed farmers.yaml
var defaultFarmers []byte

// CitizenRegistry looks up farmer profiles by Aadhaar number. Lookup returns
// (nil, nil) when no citizen matches.
type CitizenRegistry interface {
	Lookup(ctx context.Context, aadhaar string) (*model.FarmerProfile, error)
}

type registryFile struct {
	Farmers []model.FarmerProfile `yaml:"farmers"`
}

// MemoryRegistry is a read-only registry held in memory
type MemoryRegistry struct {
	byAadhaar map[string]model.FarmerProfile
}

// NewMemoryRegistry indexes the given profiles by their normalized Aadhaar number
func NewMemoryRegistry(farmers []model.FarmerProfile) *MemoryRegistry {
	r := &MemoryRegistry{byAadhaar: make(map[string]model.FarmerProfile, len(farmers))}
	for _, f := range farmers {
		f.Aadhaar = NormalizeAadhaar(f.Aadhaar)
		r.byAadhaar[f.Aadhaar] = f
	}
	return r
}

// LoadRegistry reads a YAML registry file. An empty path loads the bundled
// demo registry.
func LoadRegistry(path string) (*MemoryRegistry, error) {
	data := defaultFarmers
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read registry file: %w", err)
		}
	}
	return ParseRegistry(data)
}

// ParseRegistry builds a registry from YAML content
func ParseRegistry(data []byte) (*MemoryRegistry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return NewMemoryRegistry(file.Farmers), nil
}

func (r *MemoryRegistry) Lookup(_ context.Context, aadhaar string) (*model.FarmerProfile, error) {
	clean := NormalizeAadhaar(aadhaar)
	if clean == "" {
		return nil, nil
	}
	f, ok := r.byAadhaar[clean]
	if !ok {
		return nil, nil
	}
	f.Crops = append([]string(nil), f.Crops...)
	return &f, nil
}

// Len returns the number of registered citizens
func (r *MemoryRegistry) Len() int {
	return len(r.byAadhaar)
}

// NormalizeAadhaar strips everything but digits, so "1234 5678 9012" and
// "1234-5678-9012" match the same record
func NormalizeAadhaar(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
