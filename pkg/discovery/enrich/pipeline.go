// Package enrich runs an ordered registry of stateless enrichment stages
// against each discovered device, using a bounded worker pool so one slow
// device can't stall the rest of a scan. Stages run sequentially per
// device (each stage sees the previous stage's additions); devices are
// enriched concurrently.
package enrich

import (
	"context"
	"fmt"
	"sync"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// Stage is one enrichment step. Stages are additive: they should use the
// DeviceInfo's "IfEmpty" setters unless they are explicitly designed to
// supersede an earlier guess (the classifier, which always runs last).
type Stage interface {
	Name() string
	Enrich(ctx context.Context, d *discovery.DeviceInfo)
}

// Pipeline runs an ordered list of Stages against a set of devices using a
// bounded worker pool.
type Pipeline struct {
	stages  []Stage
	workers int
}

// New builds a Pipeline. workers <= 0 is normalized to 1.
func New(workers int, stages ...Stage) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{stages: stages, workers: workers}
}

// Run enriches every device in devices, preserving the input order in its
// return slice — enrichment must never scramble which fingerprint
// corresponds to which original record.
func (p *Pipeline) Run(ctx context.Context, devices []*discovery.DeviceInfo) []*discovery.DeviceInfo {
	if len(devices) == 0 {
		return devices
	}

	jobs := make(chan int, len(devices))
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p.runStages(ctx, devices[idx])
			}
		}()
	}

	for i := range devices {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return devices
}

func (p *Pipeline) runStages(ctx context.Context, d *discovery.DeviceInfo) {
	for _, stage := range p.stages {
		if ctx.Err() != nil {
			return
		}
		runStageSafely(ctx, stage, d)
	}
}

// runStageSafely isolates one stage's panic so a single misbehaving stage
// doesn't take down the whole worker pool or the rest of that device's
// pipeline.
func runStageSafely(ctx context.Context, stage Stage, d *discovery.DeviceInfo) {
	defer func() {
		if r := recover(); r != nil {
			d.AddEnrichmentError(stage.Name(), discovery.NewEngineError(stage.Name(), discovery.ErrStage, panicError{r}))
		}
	}()
	stage.Enrich(ctx, d)
}

type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("panic in enrichment stage: %v", p.v)
}
