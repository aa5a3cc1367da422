// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/eframework-org/GO.BENCH/XOrm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XPrefs"
	"github.com/illumitacit/gostd/quit"
)

const (
	prefsBenchLoops  = "Bench/Loops"
	prefsBenchTrials = "Bench/Trials"
)

var (
	// ErrInterrupted 表示进程退出时运行被中断。
	ErrInterrupted = errors.New("XBench: run interrupted")

	// ErrSlower 表示某一轮的加速比低于 Runner.MinSpeedup。
	ErrSlower = errors.New("XBench: optimized variant is slower than expected")
)

// DefaultRepetitions 是默认的重复次数序列。
var DefaultRepetitions = []int{1, 10, 100}

// Round 是同一重复次数下两个变体的样本。
type Round struct {
	Loops int       // 每次试验执行片段的次数
	Slow  []float64 // 参考实现的耗时（秒）
	Fast  []float64 // 优化实现的耗时（秒）
}

// Speedup 返回参考实现与优化实现耗时中位数之比。
func (r Round) Speedup() float64 {
	slow, fast := median(r.Slow), median(r.Fast)
	switch {
	case fast > 0:
		return slow / fast
	case slow > 0:
		return math.Inf(1)
	default:
		return 1
	}
}

// Report 是一个条目的运行结果。
type Report struct {
	Name   string
	Rounds []Round
}

// Speedup 返回每一轮的加速比。
func (r *Report) Speedup() []float64 {
	result := make([]float64, len(r.Rounds))
	for i, round := range r.Rounds {
		result[i] = round.Speedup()
	}
	return result
}

// Runner 对条目的两个变体按重复次数序列逐轮计时并输出原始样本。
type Runner struct {
	Setup       Snippet   // 每次试验前执行的片段，默认为 SearchAll
	Repetitions []int     // 重复次数序列，默认为 1, 10, 100
	Trials      int       // 每轮的试验次数，默认为 5
	Output      io.Writer // 样本输出，默认为标准输出
	MinSpeedup  float64   // 最低加速比，0 表示不校验
}

// NewRunner 根据首选项创建运行器，prefs 为空时使用默认值。
//
// 首选项：
//   - Bench/Loops：重复次数序列，如 [1, 10, 100] 或 "1,10,100"
//   - Bench/Trials：每轮的试验次数
func NewRunner(prefs XPrefs.IBase) *Runner {
	runner := &Runner{
		Setup:       SearchAll,
		Repetitions: slices.Clone(DefaultRepetitions),
		Trials:      DefaultTrials,
		Output:      os.Stdout,
	}
	if prefs == nil {
		return runner
	}
	if value := prefs.Get(prefsBenchLoops); value != nil {
		if loops, err := ParseLoops(value); err != nil {
			XLog.Warn("XBench.NewRunner: invalid %v: %v, use default %v.", prefsBenchLoops, err, DefaultRepetitions)
		} else {
			runner.Repetitions = loops
		}
	}
	if trials := prefs.GetInt(prefsBenchTrials, DefaultTrials); trials > 0 {
		runner.Trials = trials
	} else {
		XLog.Warn("XBench.NewRunner: invalid %v: %v, use default %v.", prefsBenchTrials, trials, DefaultTrials)
	}
	return runner
}

// ParseLoops 解析重复次数序列，支持整型切片、数值切片及逗号分隔的字符串。
func ParseLoops(value any) ([]int, error) {
	var loops []int
	switch v := value.(type) {
	case []int:
		loops = slices.Clone(v)
	case []any:
		for _, item := range v {
			switch n := item.(type) {
			case int:
				loops = append(loops, n)
			case int64:
				loops = append(loops, int(n))
			case float64:
				loops = append(loops, int(n))
			default:
				return nil, fmt.Errorf("loop %v is not a number", item)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("loop %q is not a number", part)
			}
			loops = append(loops, n)
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
	if len(loops) == 0 {
		return nil, errors.New("empty loops")
	}
	for _, n := range loops {
		if n <= 0 {
			return nil, fmt.Errorf("loop %v must be positive", n)
		}
	}
	return loops, nil
}

// Run 在环境 env 中运行条目，按重复次数逐轮输出两个变体的样本并返回报告。
// 任一片段返回错误时运行中止，已输出的内容不会撤回。
// 运行器本身不回滚，数据隔离由环境负责。
func (r *Runner) Run(env *XOrm.Env, entry Entry) (*Report, error) {
	out := r.Output
	if out == nil {
		out = os.Stdout
	}
	trials := r.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	repetitions := r.Repetitions
	if len(repetitions) == 0 {
		repetitions = DefaultRepetitions
	}

	slow, fast := entry.Pair()
	ctx := &Context{Env: env}
	report := &Report{Name: entry.Name}

	for _, loops := range repetitions {
		select {
		case <-quit.GetQuitChannel():
			XLog.Notice("XBench.Run(%v): receive signal of QUIT.", entry.Name)
			return report, ErrInterrupted
		default:
		}

		slowTimes, err := Repeat(ctx, slow, r.Setup, loops, trials)
		if err != nil {
			XLog.Error("XBench.Run(%v): slow variant of loops %v failed: %v", entry.Name, loops, err)
			return report, fmt.Errorf("XBench.Run(%v): loops %v slow: %w", entry.Name, loops, err)
		}
		fastTimes, err := Repeat(ctx, fast, r.Setup, loops, trials)
		if err != nil {
			XLog.Error("XBench.Run(%v): fast variant of loops %v failed: %v", entry.Name, loops, err)
			return report, fmt.Errorf("XBench.Run(%v): loops %v fast: %w", entry.Name, loops, err)
		}

		fmt.Fprintf(out, "\n=============== loops %d\n", loops)
		fmt.Fprintln(out, FormatSamples(slowTimes))
		fmt.Fprintln(out, FormatSamples(fastTimes))

		round := Round{Loops: loops, Slow: slowTimes, Fast: fastTimes}
		report.Rounds = append(report.Rounds, round)
		sharedMetrics.observe(entry.Name, round)

		speedup := round.Speedup()
		XLog.Notice("XBench.Run(%v): loops %v speedup %.2fx (expected %v).", entry.Name, loops, speedup, entry.Speedup)
		if r.MinSpeedup > 0 && speedup < r.MinSpeedup {
			return report, fmt.Errorf("XBench.Run(%v): loops %v speedup %.2fx below %.2fx: %w", entry.Name, loops, speedup, r.MinSpeedup, ErrSlower)
		}
	}
	fmt.Fprintln(out)
	return report, nil
}

// FormatSamples 将样本格式化为 ['0.00123', '0.00098'] 形式，保留 5 位小数。
func FormatSamples(samples []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, s := range samples {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('\'')
		sb.WriteString(strconv.FormatFloat(s, 'f', 5, 64))
		sb.WriteByte('\'')
	}
	sb.WriteByte(']')
	return sb.String()
}

func median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
