package catalog

import (
	"github.com/partscope/partscope/pkg/storage"
)

var cpuSynonyms = []synonym{
	{"core_count", []string{"cores", "no. of cores", "core count", "number of cores", "cpu cores"}},
	{"thread_count", []string{"threads", "no. of threads", "thread count", "number of threads"}},
	{"base_frequency", []string{"base frequency", "base clock", "clock speed", "processor base frequency", "frequency"}},
	{"boost_frequency", []string{"boost frequency", "boost clock", "max turbo frequency", "turbo frequency", "max boost clock"}},
	{"l3_cache", []string{"l3 cache", "cache", "smart cache", "total l3 cache"}},
	{"integrated_graphics", []string{"integrated graphics", "processor graphics", "igpu", "graphics"}},
	{"socket", []string{"socket", "socket type", "cpu socket", "sockets supported"}},
}

type cpuHandler struct{}

func (cpuHandler) Name() string { return "CPU" }

func (cpuHandler) Canonicalize(raw map[string]string) map[string]string {
	return canonicalize(raw, cpuSynonyms)
}

func (cpuHandler) Facets(components []storage.Component) FacetSet {
	cores := intSet{}
	base := floatSet{}
	boost := floatSet{}
	l3 := floatSet{}
	igpu := stringSet{}

	for _, c := range components {
		if v, ok := ParseNumber(c.Specs["core_count"]); ok {
			cores.add(int(v))
		}
		if v, ok := FrequencyGHz(c.Specs["base_frequency"]); ok {
			base.add(v)
		}
		if v, ok := FrequencyGHz(c.Specs["boost_frequency"]); ok {
			boost.add(v)
		}
		if v, ok := ParseNumber(c.Specs["l3_cache"]); ok {
			l3.add(v)
		}
		igpu.add(c.Specs["integrated_graphics"])
	}

	return FacetSet{
		CoreCounts:         cores.sorted(),
		BaseFrequencies:    base.sorted(),
		BoostFrequencies:   boost.sorted(),
		L3Caches:           l3.sorted(),
		IntegratedGraphics: igpu.sorted(),
	}
}
