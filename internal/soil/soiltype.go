package soil

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// SoilType holds the geomechanical parameters of a soil. Profiles refer to
// soil types by ID only.
type SoilType struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Source      string `yaml:"source,omitempty"`

	DryWeight       float64 `yaml:"ydry"`    // [kN/m3]
	SaturatedWeight float64 `yaml:"ysat"`    // [kN/m3]
	Cohesion        float64 `yaml:"c"`       // [kN/m2]
	FrictionAngle   float64 `yaml:"phi"`     // [degrees]
	Upsilon         float64 `yaml:"upsilon"` // Poisson ratio
	Permeability    float64 `yaml:"k"`       // [m/s]

	MCUpsilon float64 `yaml:"mc_upsilon,omitempty"` // Mohr-Coulomb
	MCE50     float64 `yaml:"mc_e50,omitempty"`

	HSE50  float64 `yaml:"hs_e50,omitempty"` // Hardening Soil
	HSEoed float64 `yaml:"hs_eoed,omitempty"`
	HSEur  float64 `yaml:"hs_eur,omitempty"`
	HSM    float64 `yaml:"hs_m,omitempty"`

	SSCLambda float64 `yaml:"ssc_lambda,omitempty"` // Soft Soil Creep
	SSCKappa  float64 `yaml:"ssc_kappa,omitempty"`
	SSCMu     float64 `yaml:"ssc_mu,omitempty"`

	Cp  float64 `yaml:"cp,omitempty"` // Koppejan settlement
	Cs  float64 `yaml:"cs,omitempty"`
	Cap float64 `yaml:"cap,omitempty"`
	Cas float64 `yaml:"cas,omitempty"`
	Cv  float64 `yaml:"cv,omitempty"` // consolidation coefficient

	Color string `yaml:"color,omitempty"` // display colour, "#rrggbb"
}

type catalogue struct {
	SoilTypes []SoilType `yaml:"soiltypes"`
}

//go:embed cur162.yaml
var defaultCatalogue []byte

// LoadSoilTypes decodes a YAML catalogue of the form
//
//	soiltypes:
//	  - id: 10000
//	    name: sand
//	    ydry: 18
//	    ...
//
// Unknown keys, duplicate ids and ids below 1 are errors.
func LoadSoilTypes(r io.Reader) ([]SoilType, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c catalogue
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode soil types: %w", err)
	}

	seen := make(map[int]bool, len(c.SoilTypes))
	for i, st := range c.SoilTypes {
		if st.ID < 1 {
			return nil, fmt.Errorf("soil type %d (%q): id must be positive", i, st.Name)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("soil type %d (%q): duplicate id %d", i, st.Name, st.ID)
		}
		seen[st.ID] = true
	}
	return c.SoilTypes, nil
}

// DefaultSoilTypes returns the catalogue for the ids produced by Classify.
func DefaultSoilTypes() []SoilType {
	types, err := LoadSoilTypes(bytes.NewReader(defaultCatalogue))
	if err != nil {
		panic(fmt.Sprintf("soil: embedded catalogue: %v", err))
	}
	return types
}
