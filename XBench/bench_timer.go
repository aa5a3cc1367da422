// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"fmt"
	"runtime/debug"
	"time"
)

// DefaultTrials 是 Repeat 的默认试验次数。
const DefaultTrials = 5

// Repeat 重复 repeat 次试验并返回每次试验的耗时（秒）。
// 每次试验先执行一次 setup（不计时），再连续执行 number 次 stmt 并计时。
// 计时期间关闭垃圾回收，结束后恢复。
// setup 或 stmt 返回的第一个错误将中止后续试验。
func Repeat(ctx *Context, stmt, setup Snippet, number, repeat int) ([]float64, error) {
	samples := make([]float64, 0, repeat)
	for trial := range repeat {
		elapsed, err := timeTrial(ctx, stmt, setup, number)
		if err != nil {
			return samples, fmt.Errorf("trial %d: %w", trial, err)
		}
		samples = append(samples, elapsed)
	}
	return samples, nil
}

func timeTrial(ctx *Context, stmt, setup Snippet, number int) (float64, error) {
	if setup != nil {
		if err := setup(ctx); err != nil {
			return 0, fmt.Errorf("setup: %w", err)
		}
	}

	gcPercent := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(gcPercent)

	start := time.Now()
	for range number {
		if err := stmt(ctx); err != nil {
			return 0, err
		}
	}
	return time.Since(start).Seconds(), nil
}
