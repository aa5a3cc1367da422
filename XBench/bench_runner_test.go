// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"bytes"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/eframework-org/GO.UTIL/XPrefs"
	"github.com/stretchr/testify/assert"
)

// countingEntry 返回记录调用次数的条目。
func countingEntry(slowCalls, fastCalls *int, slowErr error) Entry {
	return Entry{
		Name:    "counting",
		Speedup: "1x",
		Pair: func() (Snippet, Snippet) {
			slow := func(ctx *Context) error {
				*slowCalls++
				if slowErr != nil && *slowCalls > 1 {
					return slowErr
				}
				return nil
			}
			fast := func(ctx *Context) error {
				*fastCalls++
				return nil
			}
			return slow, fast
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("Output", func(t *testing.T) {
		var slowCalls, fastCalls, setupCalls int
		var buf bytes.Buffer
		runner := &Runner{
			Setup:       func(ctx *Context) error { setupCalls++; return nil },
			Repetitions: []int{1, 3},
			Trials:      2,
			Output:      &buf,
		}

		report, err := runner.Run(nil, countingEntry(&slowCalls, &fastCalls, nil))
		assert.NoError(t, err)
		assert.Equal(t, 8, setupCalls, "每个变体的每次试验都应当执行一次 setup。")
		assert.Equal(t, 8, slowCalls, "参考实现应当执行 (1+3)*2 次。")
		assert.Equal(t, 8, fastCalls, "优化实现应当执行 (1+3)*2 次。")

		sample := `'\d+\.\d{5}'`
		line := `\[` + sample + `, ` + sample + `\]\n`
		pattern := regexp.MustCompile(`^\n=============== loops 1\n` + line + line + `\n=============== loops 3\n` + line + line + `\n$`)
		assert.Regexp(t, pattern, buf.String(), "输出格式应当与约定一致。")

		assert.Equal(t, "counting", report.Name)
		assert.Len(t, report.Rounds, 2)
		assert.Equal(t, 3, report.Rounds[1].Loops)
		assert.Len(t, report.Speedup(), 2)
	})

	t.Run("Abort", func(t *testing.T) {
		var slowCalls, fastCalls int
		var buf bytes.Buffer
		want := errors.New("snippet failure")
		runner := &Runner{Repetitions: []int{1, 3}, Trials: 1, Output: &buf}

		report, err := runner.Run(nil, countingEntry(&slowCalls, &fastCalls, want))
		assert.ErrorIs(t, err, want, "片段的错误应当原样传播。")
		assert.Contains(t, err.Error(), "counting", "错误应当包含条目名称。")
		assert.Contains(t, err.Error(), "loops 3", "错误应当包含重复次数。")
		assert.Len(t, report.Rounds, 1, "出错前完成的轮次应当保留在报告中。")
		assert.Contains(t, buf.String(), "loops 1")
		assert.NotContains(t, buf.String(), "loops 3", "出错的轮次不应当输出。")
		assert.Equal(t, 1, fastCalls, "出错后不应当继续执行优化实现。")
	})

	t.Run("SetupError", func(t *testing.T) {
		var slowCalls, fastCalls int
		want := errors.New("setup failure")
		runner := &Runner{
			Setup:  func(ctx *Context) error { return want },
			Output: &bytes.Buffer{},
		}
		_, err := runner.Run(nil, countingEntry(&slowCalls, &fastCalls, nil))
		assert.ErrorIs(t, err, want, "setup 的错误应当中止运行。")
		assert.Equal(t, 0, slowCalls)
	})

	t.Run("MinSpeedup", func(t *testing.T) {
		entry := Entry{
			Name: "slower",
			Pair: func() (Snippet, Snippet) {
				return func(ctx *Context) error { return nil },
					func(ctx *Context) error { time.Sleep(time.Millisecond); return nil }
			},
		}
		runner := &Runner{Repetitions: []int{1}, Trials: 3, Output: &bytes.Buffer{}, MinSpeedup: 1}
		report, err := runner.Run(nil, entry)
		assert.ErrorIs(t, err, ErrSlower, "加速比低于阈值时应当返回 ErrSlower。")
		assert.Len(t, report.Rounds, 1)

		runner.MinSpeedup = 0
		_, err = runner.Run(nil, entry)
		assert.NoError(t, err, "未设置阈值时不应当校验加速比。")
	})

	t.Run("Speedup", func(t *testing.T) {
		assert.Equal(t, 2.0, Round{Slow: []float64{3, 1, 2}, Fast: []float64{1, 1, 1}}.Speedup())
		assert.Equal(t, 2.5, Round{Slow: []float64{2, 3}, Fast: []float64{1, 1}}.Speedup(), "偶数个样本应当取中间两个的平均值。")
		assert.True(t, math.IsInf(Round{Slow: []float64{1}, Fast: []float64{0}}.Speedup(), 1))
		assert.Equal(t, 1.0, Round{}.Speedup())
	})

	t.Run("Format", func(t *testing.T) {
		assert.Equal(t, "['0.00123', '0.10000', '12.00000']", FormatSamples([]float64{0.001234, 0.1, 12}))
		assert.Equal(t, "[]", FormatSamples(nil))
	})
}

func TestNewRunner(t *testing.T) {
	runner := NewRunner(nil)
	assert.Equal(t, DefaultRepetitions, runner.Repetitions, "默认的重复次数应当为 1, 10, 100。")
	assert.Equal(t, DefaultTrials, runner.Trials, "默认的试验次数应当为 5。")
	assert.NotNil(t, runner.Setup)
	assert.Zero(t, runner.MinSpeedup, "默认不校验加速比。")

	runner.Repetitions[0] = 1000
	assert.Equal(t, 1, DefaultRepetitions[0], "修改运行器不应当影响默认值。")

	tests := []struct {
		name   string
		prefs  XPrefs.IBase
		loops  []int
		trials int
	}{
		{"String", XPrefs.New().Set(prefsBenchLoops, "1, 5").Set(prefsBenchTrials, 3), []int{1, 5}, 3},
		{"Ints", XPrefs.New().Set(prefsBenchLoops, []int{2, 4}), []int{2, 4}, DefaultTrials},
		{"Numbers", XPrefs.New().Set(prefsBenchLoops, []any{1.0, 20.0}), []int{1, 20}, DefaultTrials},
		{"Invalid", XPrefs.New().Set(prefsBenchLoops, "a,b").Set(prefsBenchTrials, 0), DefaultRepetitions, DefaultTrials},
		{"Negative", XPrefs.New().Set(prefsBenchLoops, []int{1, -1}), DefaultRepetitions, DefaultTrials},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			runner := NewRunner(test.prefs)
			assert.Equal(t, test.loops, runner.Repetitions)
			assert.Equal(t, test.trials, runner.Trials)
		})
	}

	_, err := ParseLoops("")
	assert.Error(t, err)
	_, err = ParseLoops([]any{"x"})
	assert.Error(t, err)
	_, err = ParseLoops(3)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}
