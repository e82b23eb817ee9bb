package correspondence

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	domaincorr "promette/internal/domain/correspondence"
)

//go:embed default_catalog.toml
var defaultCatalogTOML []byte

// CatalogProfile is the TOML description of the workflow catalog: states,
// transition edges, folio scopes and the lookup/position seeds applied by
// init-db.
type CatalogProfile struct {
	Version         int                 `toml:"version"`
	States          []profileState      `toml:"states"`
	Transitions     []profileTransition `toml:"transitions"`
	Scopes          []profileScope      `toml:"scopes"`
	Priorities      []ProfileLookup     `toml:"priorities"`
	DeliveryMethods []ProfileLookup     `toml:"delivery_methods"`
	Positions       []ProfilePosition   `toml:"positions"`
}

type profileState struct {
	ID       int    `toml:"id"`
	Name     string `toml:"name"`
	Deriving bool   `toml:"deriving"`
	Terminal bool   `toml:"terminal"`
}

type profileTransition struct {
	From int   `toml:"from"`
	To   []int `toml:"to"`
}

type profileScope struct {
	Key         string `toml:"key"`
	Description string `toml:"description"`
}

type ProfileLookup struct {
	ID   uint64 `toml:"id"`
	Name string `toml:"name"`
}

type ProfilePosition struct {
	ID           uint64 `toml:"id"`
	Title        string `toml:"title"`
	HolderUserID uint64 `toml:"holder_user_id"`
	HolderName   string `toml:"holder_name"`
	Area         string `toml:"area"`
	Active       bool   `toml:"active"`
}

// LoadCatalogProfile reads the catalog profile from a TOML file; an empty
// path selects the embedded default.
func LoadCatalogProfile(path string) (CatalogProfile, error) {
	raw := defaultCatalogTOML
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fileRaw, err := os.ReadFile(trimmed)
		if err != nil {
			return CatalogProfile{}, err
		}
		raw = fileRaw
	}

	var profile CatalogProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return CatalogProfile{}, err
	}
	if profile.Version != 1 {
		return CatalogProfile{}, fmt.Errorf("unsupported catalog profile version %d", profile.Version)
	}
	if len(profile.States) == 0 {
		return CatalogProfile{}, fmt.Errorf("catalog profile declares no states")
	}
	return profile, nil
}

// BuildCatalog turns the profile into the immutable domain catalog.
func (p CatalogProfile) BuildCatalog() (*domaincorr.Catalog, error) {
	states := make([]domaincorr.StateSpec, 0, len(p.States))
	for _, s := range p.States {
		states = append(states, domaincorr.StateSpec{
			ID:       domaincorr.State(s.ID),
			Name:     s.Name,
			Deriving: s.Deriving,
			Terminal: s.Terminal,
		})
	}

	edges := make(map[domaincorr.State][]domaincorr.State, len(p.Transitions))
	for _, t := range p.Transitions {
		targets := make([]domaincorr.State, 0, len(t.To))
		for _, to := range t.To {
			targets = append(targets, domaincorr.State(to))
		}
		edges[domaincorr.State(t.From)] = targets
	}

	scopes := make(map[string]string, len(p.Scopes))
	for _, scope := range p.Scopes {
		scopes[scope.Key] = scope.Description
	}

	return domaincorr.NewCatalog(states, edges, scopes)
}
