// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import "github.com/prometheus/client_golang/prometheus"

// metricsInfo 定义了全局的统计信息。
type metricsInfo struct {
	Registry          *prometheus.Registry     // 指标注册表
	OperationDuration *prometheus.HistogramVec // 操作耗时（秒）
	OperationTotal    *prometheus.CounterVec   // 操作次数
}

var sharedMetrics = newMetrics()

func newMetrics() *metricsInfo {
	reg := prometheus.NewRegistry()

	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xorm_operation_duration_seconds",
		Help:    "Duration of env operations in seconds.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{"operation", "model"})

	opTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xorm_operation_total",
		Help: "Total number of env operations.",
	}, []string{"operation", "status"})

	reg.MustRegister(opDuration, opTotal)

	return &metricsInfo{
		Registry:          reg,
		OperationDuration: opDuration,
		OperationTotal:    opTotal,
	}
}

// observe 记录一次操作的耗时和结果。
func (mi *metricsInfo) observe(operation, model string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	mi.OperationDuration.WithLabelValues(operation, model).Observe(seconds)
	mi.OperationTotal.WithLabelValues(operation, status).Inc()
}

// 提供了统计信息的全局访问点。
func Metrics() *metricsInfo {
	return sharedMetrics
}
