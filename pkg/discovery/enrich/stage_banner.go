package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery/banner"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

// BannerStage grabs service banners (plain TCP, or TLS on the TLS ports)
// from the fixed banner.Ports list. It runs against every device regardless of protocol, since
// banner data is useful for both OS fingerprinting and classification.
type BannerStage struct {
	grabber *banner.Grabber
}

func NewBannerStage(workers int) *BannerStage {
	return &BannerStage{grabber: banner.NewGrabber(workers, 1500*time.Millisecond, 1*time.Second)}
}

func (s *BannerStage) Name() string { return "banner-grab" }

func (s *BannerStage) Enrich(ctx context.Context, d *discovery.DeviceInfo) {
	addr := d.Address()
	if addr == "" || !netutil.IsSafeTarget(addr) {
		return
	}
	for _, r := range s.grabber.Grab(ctx, addr) {
		d.AddService(discovery.ServiceEntry{
			Port:       r.Port,
			Name:       r.Name,
			Banner:     r.Banner,
			TLS:        r.TLS,
			TLSVersion: r.TLSVersion,
		})
		if r.Banner != "" {
			d.SetBanner(fmt.Sprintf("%d/%s", r.Port, r.Name), r.Banner)
		}
	}
}
