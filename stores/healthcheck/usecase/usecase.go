package usecase

import (
	"time"

	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/base/log"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
)

const DefaultProbeTimeout = 2 * time.Second

type impl struct {
	probes  []hcdomain.Probe
	timeout time.Duration
}

// New checks every probe on each call. With no probes the service is
// reported healthy, which is the case for the in-memory store.
func New(timeout time.Duration, probes ...hcdomain.Probe) hcdomain.HealthCheckUsecase {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &impl{probes: probes, timeout: timeout}
}

func (im *impl) Check(c ctx.Ctx) hcdomain.Report {
	report := hcdomain.Report{
		Healthy:    true,
		Components: make(map[string]string, len(im.probes)),
	}
	for _, p := range im.probes {
		status := hcdomain.StatusOk
		if err := im.ping(c, p); err != nil {
			c.WithFields(log.Fields{"err": err, "probe": p.Name()}).Error("health probe failed")
			status = hcdomain.StatusDown
			report.Healthy = false
		}
		report.Components[p.Name()] = status
	}
	return report
}

func (im *impl) ping(c ctx.Ctx, p hcdomain.Probe) error {
	pingCtx, cancel := ctx.WithTimeout(c, im.timeout)
	defer cancel()
	return p.Ping(pingCtx)
}
