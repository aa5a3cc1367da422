// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/eframework-org/GO.BENCH/XBench"
	"github.com/eframework-org/GO.BENCH/XOrm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// dumpMetrics 以 Prometheus 文本格式输出 XOrm 与 XBench 的指标。
func dumpMetrics(out io.Writer) error {
	for _, reg := range []*prometheus.Registry{XOrm.Metrics().Registry, XBench.Metrics().Registry} {
		families, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		for _, family := range families {
			if _, err := expfmt.MetricFamilyToText(out, family); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
	}
	return nil
}
