// Package orchestrator ties the five discovery engines and the
// enrichment pipeline together behind a single Discover call. It is kept
// separate from pkg/discovery so the engines (which depend on
// pkg/discovery for record types) don't have to import something that
// imports them back.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/rvh-io/hearsay/pkg/discovery/engines/coap"
	"github.com/rvh-io/hearsay/pkg/discovery/engines/mdns"
	"github.com/rvh-io/hearsay/pkg/discovery/engines/mqtt"
	"github.com/rvh-io/hearsay/pkg/discovery/engines/upnp"
	"github.com/rvh-io/hearsay/pkg/discovery/engines/wsd"
	"github.com/rvh-io/hearsay/pkg/discovery/enrich"
)

// Orchestrator runs one discovery request end to end: fan the five
// engines out in parallel, then (optionally) run the enrichment pipeline
// over every record they produced.
type Orchestrator struct {
	logger           discovery.Logger
	enrichmentWorkers int
}

type Option func(*Orchestrator)

func WithLogger(l discovery.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithEnrichmentWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.enrichmentWorkers = n
		}
	}
}

func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{logger: discovery.NoOpLogger{}, enrichmentWorkers: 10}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Discover runs every engine the request selects, in parallel, then
// enriches the combined result set if requested.
func (o *Orchestrator) Discover(ctx context.Context, req *discovery.Request) (*discovery.Response, error) {
	if req == nil {
		return nil, &discovery.ValidationError{Field: "request", Msg: "must not be nil"}
	}

	iface, err := netutil.ResolveInterface(req.Interface())
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve interface: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, req.Timeout())
	defer cancel()

	resp := &discovery.Response{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	runMulticast := func(proto discovery.Protocol, fn func() error) {
		if !req.HasProtocol(proto) {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				resp.Errors = append(resp.Errors, asEngineError(string(proto), err))
				mu.Unlock()
			}
		}()
	}

	runMulticast(discovery.ProtocolUPnP, func() error {
		recs, err := upnp.Scan(scanCtx, req, iface)
		mu.Lock()
		resp.UPnP = recs
		mu.Unlock()
		return err
	})
	runMulticast(discovery.ProtocolMDNS, func() error {
		recs, err := mdns.Scan(scanCtx, req, iface)
		mu.Lock()
		resp.MDNS = recs
		mu.Unlock()
		return err
	})
	runMulticast(discovery.ProtocolWSD, func() error {
		recs, err := wsd.Scan(scanCtx, req, iface)
		mu.Lock()
		resp.WSD = recs
		mu.Unlock()
		return err
	})
	runMulticast(discovery.ProtocolMQTT, func() error {
		recs, err := mqtt.Scan(scanCtx, req)
		mu.Lock()
		resp.MQTT = recs
		mu.Unlock()
		return err
	})
	runMulticast(discovery.ProtocolCoAP, func() error {
		recs, err := coap.Scan(scanCtx, req, iface)
		mu.Lock()
		resp.CoAP = recs
		mu.Unlock()
		return err
	})

	wg.Wait()

	if req.EnrichmentEnabled() {
		o.enrich(ctx, resp)
	}

	return resp, nil
}

func asEngineError(engine string, err error) *discovery.EngineError {
	var engErr *discovery.EngineError
	if errors.As(err, &engErr) {
		return engErr
	}
	return discovery.NewEngineError(engine, discovery.ErrTransportRemote, err)
}

func (o *Orchestrator) enrich(ctx context.Context, resp *discovery.Response) {
	refs := resp.Records()
	if len(refs) == 0 {
		return
	}

	devices := make([]*discovery.DeviceInfo, len(refs))
	for i, ref := range refs {
		devices[i] = discovery.NewDeviceInfo(string(ref.Protocol), ref.Address, ref.Port, rawDataFor(ref))
	}

	pipeline := enrich.New(o.enrichmentWorkers,
		enrich.NewUPnPStage(),
		enrich.NewMDNSStage(),
		enrich.NewWSDStage(),
		enrich.NewMQTTStage(),
		enrich.NewCoAPStage(),
		enrich.NewBannerStage(o.enrichmentWorkers),
		enrich.NewFingerprintStage(),
		enrich.NewClassifierStage(),
	)
	pipeline.Run(ctx, devices)

	for i, ref := range refs {
		ref.Raw.SetFingerprint(devices[i].ToFingerprint())
	}
}

// rawDataFor flattens a protocol record's identifying fields into the
// generic string map the enrichment stages read from, keyed the same way
// regardless of which concrete record type produced it.
func rawDataFor(ref discovery.RecordRef) map[string]string {
	switch rec := ref.Raw.(type) {
	case *discovery.UPnPRecord:
		m := map[string]string{
			"location":      rec.Location,
			"server":        rec.Server,
			"usn":           rec.USN,
			"search_target": rec.SearchTarget,
		}
		for k, v := range rec.Headers {
			if _, exists := m[k]; !exists {
				m[k] = v
			}
		}
		return m
	case *discovery.MDNSRecord:
		m := map[string]string{
			"instance_name": rec.InstanceName,
			"service_type":  rec.ServiceType,
		}
		for k, v := range rec.TXT {
			m[k] = v
		}
		return m
	case *discovery.WSDRecord:
		return map[string]string{
			"raw_xml": rec.RawXML,
		}
	case *discovery.MQTTRecord:
		return map[string]string{
			"broker_name":      rec.BrokerName,
			"broker_version":   rec.BrokerVersion,
			"anonymous_access": strconv.FormatBool(rec.AnonymousAccess),
		}
	case *discovery.CoAPRecord:
		m := map[string]string{}
		var types []string
		for _, r := range rec.Resources {
			if r.ResourceType != "" {
				types = append(types, r.ResourceType)
			}
		}
		m["resource_types"] = joinStrings(types)
		return m
	default:
		return nil
	}
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
