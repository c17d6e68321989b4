package catalog

import (
	"reflect"
	"testing"

	"github.com/partscope/partscope/pkg/storage"
)

func TestHandlerFor(t *testing.T) {
	for _, name := range []string{"CPU", "cpu", " Memory ", "MONITOR"} {
		if _, ok := HandlerFor(name); !ok {
			t.Errorf("expected a handler for %q", name)
		}
	}
	if _, ok := HandlerFor("GPU"); ok {
		t.Error("expected no handler for GPU")
	}
}

func TestCanonicalizeCPU(t *testing.T) {
	h, _ := HandlerFor("CPU")

	raw := map[string]string{
		"No. of Cores":  "14",
		"Base Clock":    "3.5 GHz",
		"L3 Cache":      "24 MB",
		"Made In":       "Malaysia", // no synonym, goes to the residual bucket
		"Socket":        "LGA1700",
		"empty":         "  ",
	}
	got := h.Canonicalize(raw)

	if got["core_count"] != "14" {
		t.Errorf("core_count = %q, want 14", got["core_count"])
	}
	if got["base_frequency"] != "3.5 GHz" {
		t.Errorf("base_frequency = %q", got["base_frequency"])
	}
	if got["l3_cache"] != "24 MB" {
		t.Errorf("l3_cache = %q", got["l3_cache"])
	}
	if got["socket"] != "LGA1700" {
		t.Errorf("socket = %q", got["socket"])
	}
	if got["x_made_in"] != "Malaysia" {
		t.Errorf("residual x_made_in = %q, want Malaysia", got["x_made_in"])
	}
	if _, ok := got["x_empty"]; ok {
		t.Error("blank values should be dropped")
	}
	// Unmapped labels never become canonical keys.
	if _, ok := got["made in"]; ok {
		t.Error("raw label leaked into canonical specs")
	}
}

func TestCanonicalizeFirstSynonymWins(t *testing.T) {
	h, _ := HandlerFor("Memory")

	// Both labels map to capacity; only one survives and it never gets
	// overwritten by the other.
	got := h.Canonicalize(map[string]string{
		"Capacity":    "32 GB",
		"Memory Size": "16 GB",
	})
	if got["capacity"] != "32 GB" {
		t.Errorf("capacity = %q, want the first mapped value kept", got["capacity"])
	}
}

func comp(specs map[string]string) storage.Component {
	return storage.Component{Specs: specs}
}

func TestCPUFacets(t *testing.T) {
	h, _ := HandlerFor("CPU")

	fs := h.Facets([]storage.Component{
		comp(map[string]string{"core_count": "6", "base_frequency": "3600 MHz", "l3_cache": "32 MB", "integrated_graphics": "Radeon Graphics"}),
		comp(map[string]string{"core_count": "14", "base_frequency": "3.5 GHz", "l3_cache": "24 MB", "integrated_graphics": "Intel UHD 770"}),
		comp(map[string]string{"core_count": "6", "base_frequency": "cheap and fast", "l3_cache": "N/A"}),
	})

	if !reflect.DeepEqual(fs.CoreCounts, []int{6, 14}) {
		t.Errorf("core counts = %v", fs.CoreCounts)
	}
	// MHz-denominated clocks are normalized to GHz; garbage is omitted, not
	// defaulted to zero.
	if !reflect.DeepEqual(fs.BaseFrequencies, []float64{3.5, 3.6}) {
		t.Errorf("base frequencies = %v", fs.BaseFrequencies)
	}
	if !reflect.DeepEqual(fs.L3Caches, []float64{24, 32}) {
		t.Errorf("l3 caches = %v", fs.L3Caches)
	}
	if !reflect.DeepEqual(fs.IntegratedGraphics, []string{"Intel UHD 770", "Radeon Graphics"}) {
		t.Errorf("integrated graphics = %v", fs.IntegratedGraphics)
	}
}

func TestMemoryFacets(t *testing.T) {
	h, _ := HandlerFor("Memory")

	fs := h.Facets([]storage.Component{
		comp(map[string]string{"capacity": "16 GB", "memory_type": "DDR5", "frequency": "5600 MHz"}),
		comp(map[string]string{"capacity": "32 GB", "memory_type": "DDR5", "frequency": "3600 MHz"}),
		comp(map[string]string{"capacity": "8GB", "memory_type": "DDR4", "frequency": "3200"}),
	})

	if !reflect.DeepEqual(fs.Capacities, []int{8, 16, 32}) {
		t.Errorf("capacities = %v", fs.Capacities)
	}
	// Memory frequencies stay MHz integers.
	if !reflect.DeepEqual(fs.Frequencies, []int{3200, 3600, 5600}) {
		t.Errorf("frequencies = %v", fs.Frequencies)
	}
	if !reflect.DeepEqual(fs.MemoryTypes, []string{"DDR4", "DDR5"}) {
		t.Errorf("memory types = %v", fs.MemoryTypes)
	}
}

func TestMonitorFacetsDeduplicated(t *testing.T) {
	h, _ := HandlerFor("Monitor")

	fs := h.Facets([]storage.Component{
		comp(map[string]string{"screen_size": "27 inches", "resolution": "2560x1440", "refresh_rate": "165Hz", "panel_type": "IPS"}),
		comp(map[string]string{"screen_size": "27\"", "resolution": "2560x1440", "refresh_rate": "165 Hz", "panel_type": "IPS"}),
		comp(map[string]string{"screen_size": "24 inch", "resolution": "1920x1080", "refresh_rate": "75 Hz", "panel_type": "VA"}),
	})

	if !reflect.DeepEqual(fs.ScreenSizes, []float64{24, 27}) {
		t.Errorf("screen sizes = %v", fs.ScreenSizes)
	}
	if !reflect.DeepEqual(fs.Resolutions, []string{"1920x1080", "2560x1440"}) {
		t.Errorf("resolutions = %v", fs.Resolutions)
	}
	if !reflect.DeepEqual(fs.RefreshRates, []int{75, 165}) {
		t.Errorf("refresh rates = %v", fs.RefreshRates)
	}
	if !reflect.DeepEqual(fs.PanelTypes, []string{"IPS", "VA"}) {
		t.Errorf("panel types = %v", fs.PanelTypes)
	}
}
