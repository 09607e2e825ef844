package jobs

import (
	"context"

	"anivise/internal/health"

	log "github.com/sirupsen/logrus"
)

// UpstreamProbeJobName identifies the probe job in the scheduler
const UpstreamProbeJobName = "upstream_probe"

// UpstreamProbe actively checks every configured upstream and feeds the
// outcome into the health tracker
type UpstreamProbe struct {
	tracker *health.Service
	probes  []health.Probe
}

// NewUpstreamProbe creates the probe job
func NewUpstreamProbe(tracker *health.Service, probes ...health.Probe) *UpstreamProbe {
	return &UpstreamProbe{tracker: tracker, probes: probes}
}

func (p *UpstreamProbe) Name() string { return UpstreamProbeJobName }

// Run executes all probes once
func (p *UpstreamProbe) Run(ctx context.Context) error {
	log.Printf("[HEALTH-JOB] Probing %d upstream(s)...", len(p.probes))
	p.tracker.RunProbes(ctx, p.probes)

	healthy := 0
	for _, probe := range p.probes {
		if p.tracker.IsHealthy(probe.Upstream) {
			healthy++
		}
	}
	log.Printf("[HEALTH-JOB] Probe complete: %d/%d healthy, overall %s",
		healthy, len(p.probes), p.tracker.Overall())
	return ctx.Err()
}
