package enrich

import (
	"context"

	"github.com/rvh-io/hearsay/pkg/discovery/taxonomy"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

// ClassifierStage assigns a device category from the priority-ordered
// taxonomy rules. It must run last in the pipeline: every other stage's
// output feeds the classification rules.
type ClassifierStage struct{}

func NewClassifierStage() *ClassifierStage { return &ClassifierStage{} }

func (s *ClassifierStage) Name() string { return "classifier" }

func (s *ClassifierStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	d.SetDeviceCategory(taxonomy.Classify(taxonomyView{d}))
}

// taxonomyView adapts *discovery.DeviceInfo to taxonomy.Device without
// the taxonomy package needing to import discovery (which would create an
// import cycle, since discovery.DeviceInfo is the thing being classified).
type taxonomyView struct {
	d *discovery.DeviceInfo
}

func (v taxonomyView) Protocol() string             { return v.d.Protocol() }
func (v taxonomyView) RawData() map[string]string   { return v.d.RawData() }
func (v taxonomyView) FriendlyName() string         { return v.d.FriendlyName() }
func (v taxonomyView) Manufacturer() string         { return v.d.Manufacturer() }
func (v taxonomyView) Model() string                { return v.d.Model() }
func (v taxonomyView) DeviceTags() []string         { return v.d.DeviceTags() }
func (v taxonomyView) OSGuess() string              { return v.d.OSGuess() }
func (v taxonomyView) Banners() map[string]string   { return v.d.Banners() }

func (v taxonomyView) Services() []taxonomy.ServiceEntryLike {
	svcs := v.d.Services()
	out := make([]taxonomy.ServiceEntryLike, len(svcs))
	for i, s := range svcs {
		out[i] = taxonomy.ServiceEntryLike{Port: s.Port, Name: s.Name}
	}
	return out
}
