// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"github.com/eframework-org/GO.UTIL/XString"
	"github.com/prometheus/client_golang/prometheus"
)

// metricsInfo 定义了基准测试的统计信息。
type metricsInfo struct {
	Registry      *prometheus.Registry     // 指标注册表
	SampleSeconds *prometheus.HistogramVec // 单次试验耗时（秒）
	RoundTotal    *prometheus.CounterVec   // 完成的轮次
}

var sharedMetrics = newMetrics()

func newMetrics() *metricsInfo {
	reg := prometheus.NewRegistry()

	samples := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xbench_sample_seconds",
		Help:    "Duration of a timed trial in seconds.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"entry", "variant", "loops"})

	rounds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xbench_round_total",
		Help: "Total number of completed benchmark rounds.",
	}, []string{"entry"})

	reg.MustRegister(samples, rounds)

	return &metricsInfo{
		Registry:      reg,
		SampleSeconds: samples,
		RoundTotal:    rounds,
	}
}

// observe 记录一轮的全部样本。
func (mi *metricsInfo) observe(entry string, round Round) {
	loops := XString.ToString(round.Loops)
	for _, s := range round.Slow {
		mi.SampleSeconds.WithLabelValues(entry, "slow", loops).Observe(s)
	}
	for _, s := range round.Fast {
		mi.SampleSeconds.WithLabelValues(entry, "fast", loops).Observe(s)
	}
	mi.RoundTotal.WithLabelValues(entry).Inc()
}

// 提供了统计信息的全局访问点。
func Metrics() *metricsInfo {
	return sharedMetrics
}
