package catalog

import (
	"github.com/partscope/partscope/pkg/storage"
)

var monitorSynonyms = []synonym{
	{"screen_size", []string{"screen size", "size", "display size", "panel size"}},
	{"resolution", []string{"resolution", "display resolution", "max resolution", "native resolution"}},
	{"refresh_rate", []string{"refresh rate", "maximum refresh rate", "max refresh rate"}},
	{"panel_type", []string{"panel type", "panel", "display type"}},
}

type monitorHandler struct{}

func (monitorHandler) Name() string { return "Monitor" }

func (monitorHandler) Canonicalize(raw map[string]string) map[string]string {
	return canonicalize(raw, monitorSynonyms)
}

func (monitorHandler) Facets(components []storage.Component) FacetSet {
	sizes := floatSet{}
	resolutions := stringSet{}
	rates := intSet{}
	panels := stringSet{}

	for _, c := range components {
		if v, ok := ParseNumber(c.Specs["screen_size"]); ok {
			sizes.add(v)
		}
		resolutions.add(c.Specs["resolution"])
		if v, ok := ParseNumber(c.Specs["refresh_rate"]); ok {
			rates.add(int(v))
		}
		panels.add(c.Specs["panel_type"])
	}

	return FacetSet{
		ScreenSizes:  sizes.sorted(),
		Resolutions:  resolutions.sorted(),
		RefreshRates: rates.sorted(),
		PanelTypes:   panels.sorted(),
	}
}
