// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.BENCH/XBench"
	"github.com/eframework-org/GO.BENCH/XOrm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XPrefs"
	"github.com/illumitacit/gostd/quit"
	"github.com/spf13/cobra"
)

type runOptions struct {
	all     bool
	loops   string
	trials  int
	seed    int
	cold    bool
	driver  string
	addr    string
	metrics bool
	min     float64
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [entry...]",
		Short: "Run catalog entries",
		Long: `Run catalog entries and print raw timing samples.

Each entry runs in its own transaction, which is rolled back afterwards.
The database is taken from the Orm/Source preferences when the default
alias is registered there, otherwise from --driver and --addr.

Examples:
  ormbench run field_settings_vs_write
  ormbench run --all --loops 1,10 --trials 3
  ormbench run --all --driver mysql --addr "user:pass@tcp(127.0.0.1:3306)/bench"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := selectEntries(args, opts.all)
			if err != nil {
				return err
			}
			return runEntries(cmd, opts, entries)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.all, "all", false, "run every catalog entry")
	flags.StringVar(&opts.loops, "loops", "", "comma separated repetition counts (default 1,10,100)")
	flags.IntVar(&opts.trials, "trials", 0, "trials per round (default 5)")
	flags.IntVar(&opts.seed, "seed", 1000, "number of partners created before each entry")
	flags.BoolVar(&opts.cold, "cold", false, "invalidate the record cache before each trial")
	flags.StringVar(&opts.driver, "driver", "sqlite", "database driver (sqlite, mysql)")
	flags.StringVar(&opts.addr, "addr", "file:ormbench.db", "database address")
	flags.BoolVar(&opts.metrics, "metrics", false, "dump metrics in Prometheus text format after the run")
	flags.Float64Var(&opts.min, "min-speedup", 0, "fail when a round's speedup is below this value (0 disables)")
	return cmd
}

// selectEntries 按名称查找条目，all 为真时返回全部条目。
func selectEntries(names []string, all bool) ([]XBench.Entry, error) {
	if all {
		if len(names) > 0 {
			return nil, errors.New("--all cannot be combined with entry names")
		}
		return XBench.Catalog(), nil
	}
	if len(names) == 0 {
		return nil, errors.New("no entry given, use --all or see 'ormbench list'")
	}
	entries := make([]XBench.Entry, 0, len(names))
	for _, name := range names {
		entry, ok := XBench.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown entry %q", name)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// newRunner 合并首选项与命令行参数，命令行参数优先。
func (opts *runOptions) newRunner(out io.Writer) (*XBench.Runner, error) {
	runner := XBench.NewRunner(XPrefs.Asset())
	runner.Output = out
	runner.MinSpeedup = opts.min
	if opts.loops != "" {
		loops, err := XBench.ParseLoops(opts.loops)
		if err != nil {
			return nil, fmt.Errorf("invalid --loops: %w", err)
		}
		runner.Repetitions = loops
	}
	if opts.trials < 0 {
		return nil, fmt.Errorf("invalid --trials: %d", opts.trials)
	} else if opts.trials > 0 {
		runner.Trials = opts.trials
	}
	if opts.cold {
		runner.Setup = XBench.ColdSearch
	}
	return runner, nil
}

// openDatabase 在默认别名未注册时使用 driver 和 addr 注册数据库。
func openDatabase(driver, addr string) (err error) {
	if _, e := orm.GetDB(XBench.PartnerAlias); e == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open %v database: %v", driver, r)
		}
	}()
	XOrm.Init(XPrefs.New().Set("Orm/Source/"+strings.ToLower(driver)+"/"+XBench.PartnerAlias,
		XPrefs.New().Set("Addr", addr)))
	return nil
}

func runEntries(cmd *cobra.Command, opts *runOptions, entries []XBench.Entry) error {
	if opts.seed < 0 {
		return fmt.Errorf("invalid --seed: %d", opts.seed)
	}
	out := cmd.OutOrStdout()
	runner, err := opts.newRunner(out)
	if err != nil {
		return err
	}
	if err := openDatabase(opts.driver, opts.addr); err != nil {
		return err
	}
	if err := XBench.Install(XBench.PartnerAlias); err != nil {
		return err
	}

	quit.GetWaiter().Add(1)
	defer quit.GetWaiter().Done()

	for _, entry := range entries {
		fmt.Fprintf(out, "%v (expected %v)\n", entry.Name, entry.Speedup)
		err := XOrm.Sandbox(XBench.PartnerAlias, func(env *XOrm.Env) error {
			if _, err := XBench.Seed(env, opts.seed); err != nil {
				return err
			}
			_, err := runner.Run(env, entry)
			return err
		})
		if err != nil {
			XLog.Error("ormbench: entry %v failed: %v", entry.Name, err)
			return err
		}
	}

	if opts.metrics {
		return dumpMetrics(out)
	}
	return nil
}
