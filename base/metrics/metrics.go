/*
Package metrics wraps datadog-go to faciliate metric recording.
Naming convention of metric:
  - Internal process time: *.time
  - External latency: *.latency
  - Error: *.err
  - Warning: *.warn
*/
package metrics

import (
	"strings"
	"time"

	"github.com/x-xyz/goauction/base/env"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// Option is functional parameter for metrics option
type Option func(*opt)

type opt struct {
	// withPodName means send metrics with pod name or not
	// default: true
	withPodName bool
}

// WithoutPodName drops the pod tag from every metric sent by the Service
func WithoutPodName() Option {
	return func(o *opt) {
		o.withPodName = false
	}
}

// New creates a metric client with package name as prefix
func New(pkgName string, options ...Option) Service {
	o := opt{
		withPodName: true,
	}
	for _, option := range options {
		option(&o)
	}

	ddTags := []string{
		// using host removes all tags associated with host
		// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
		"host:",
		"env:" + env.EnvName(),
		"app:" + env.AppName(),
	}
	if o.withPodName {
		ddTags = append(ddTags, "pod:"+env.PodName())
	}

	return &Metrics{
		pkgName: pkgName,
		datadog: DDMetrics{
			ddTags: ddTags,
		},
	}
}

// Metrics prefixes every key with the package name and forwards to datadog
type Metrics struct {
	pkgName string
	datadog DDMetrics
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + `.` + key
}

// bumpSumPanic handles panics raised by inconsistent tagging.
func (mt *Metrics) bumpSumPanic(key string, tags []string) {
	if err := recover(); err != nil {
		mt.datadog.BumpSum("bump.panic", 1, 1, "tag", mt.key(key)+"#"+strings.Join(tags, "#"))
	}
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.bumpSumPanic(key, tags)
	mt.datadog.BumpAvg(mt.key(key), val, 1, tags...)
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.bumpSumPanic(key, tags)
	mt.datadog.BumpSum(mt.key(key), val, 1, tags...)
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.bumpSumPanic(key, tags)
	mt.datadog.BumpHistogram(mt.key(key), val, 1, tags...)
}

// BumpTime starts a timer and returns a value on which End() reports the
// elapsed time:
//
//	defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	defer mt.bumpSumPanic(key, tags)
	return mt.datadog.BumpTime(mt.key(key), 1, tags...)
}

type nop struct{}

// NewNop returns a Service that drops everything
func NewNop() Service {
	return nop{}
}

func (nop) BumpAvg(string, float64, ...string)       {}
func (nop) BumpSum(string, float64, ...string)       {}
func (nop) BumpHistogram(string, float64, ...string) {}
func (nop) BumpTime(string, ...string) Ender         { return nopEnder{} }

type nopEnder struct{}

func (nopEnder) End() {}

type timer struct {
	start time.Time
	done  func(time.Duration)
}

func (t *timer) End() {
	t.done(time.Since(t.start))
}
