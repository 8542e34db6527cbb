// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var IfaceExpander = ifaceExpander

func EmittedCount(c *Collector, kind string) float64 {
	return testutil.ToFloat64(c.emitted.WithLabelValues(kind))
}

func DeferredCount(c *Collector, kind string) float64 {
	return testutil.ToFloat64(c.deferred.WithLabelValues(kind))
}

func ReemittedCount(c *Collector, kind string) float64 {
	return testutil.ToFloat64(c.reemitted.WithLabelValues(kind))
}

func DroppedCount(c *Collector, kind string) float64 {
	return testutil.ToFloat64(c.dropped.WithLabelValues(kind))
}

func StoppedCount(c *Collector, st string) float64 {
	return testutil.ToFloat64(c.stopped.WithLabelValues(st))
}
