package healthcheck

import (
	"github.com/x-xyz/goauction/base/ctx"
)

const (
	StatusOk   = "ok"
	StatusDown = "down"
)

// Report is the outcome of one check, keyed by probe name
type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

// Probe checks one backing service
type Probe interface {
	Name() string
	Ping(c ctx.Ctx) error
}

type HealthCheckUsecase interface {
	Check(c ctx.Ctx) Report
}
