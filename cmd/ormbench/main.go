// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// ormbench 在指定的数据库上运行基准目录中的条目，输出原始计时样本。
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ormbench",
		Short: "ORM recordset micro-benchmarks",
		Long: `ormbench - compare reference and optimized recordset idioms.

Commands:
  ormbench list                 List catalog entries
  ormbench run <entry>...       Run the given entries
  ormbench run --all            Run every entry`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRunCmd())
	return rootCmd
}
