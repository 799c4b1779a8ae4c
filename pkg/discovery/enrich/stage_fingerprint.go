package enrich

import (
	"context"

	"github.com/rvh-io/hearsay/pkg/discovery/fingerprint"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

// FingerprintStage guesses an OS/firmware family from whatever text the
// earlier stages accumulated: SERVER headers, banners, and raw protocol
// metadata.
type FingerprintStage struct{}

func NewFingerprintStage() *FingerprintStage { return &FingerprintStage{} }

func (s *FingerprintStage) Name() string { return "os-fingerprint" }

func (s *FingerprintStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	texts := []string{d.FriendlyName(), d.Manufacturer(), d.Model()}
	for _, v := range d.RawData() {
		texts = append(texts, v)
	}
	for _, v := range d.Banners() {
		texts = append(texts, v)
	}
	if guess := fingerprint.Guess(texts...); guess != "" {
		d.SetOSGuessIfEmpty(guess)
	}
}
