package catalog

import (
	"github.com/partscope/partscope/pkg/storage"
)

var memorySynonyms = []synonym{
	{"capacity", []string{"capacity", "size", "memory size", "memory capacity", "ram size"}},
	{"memory_type", []string{"type", "memory type", "ram type", "technology"}},
	{"frequency", []string{"frequency", "speed", "memory speed", "bus speed", "clock speed"}},
	{"latency", []string{"latency", "cas latency", "cl", "timing"}},
}

type memoryHandler struct{}

func (memoryHandler) Name() string { return "Memory" }

func (memoryHandler) Canonicalize(raw map[string]string) map[string]string {
	return canonicalize(raw, memorySynonyms)
}

func (memoryHandler) Facets(components []storage.Component) FacetSet {
	capacities := intSet{}
	types := stringSet{}
	freqs := intSet{}

	for _, c := range components {
		if v, ok := ParseNumber(c.Specs["capacity"]); ok {
			capacities.add(int(v))
		}
		types.add(c.Specs["memory_type"])
		// Memory frequencies stay MHz-denominated.
		if v, ok := ParseNumber(c.Specs["frequency"]); ok {
			freqs.add(int(v))
		}
	}

	return FacetSet{
		Capacities:  capacities.sorted(),
		MemoryTypes: types.sorted(),
		Frequencies: freqs.sorted(),
	}
}
