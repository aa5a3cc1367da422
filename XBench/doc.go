// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
XBench 是对比 ORM 常见用法性能的微基准套件，每个条目提供一对（参考实现，优化实现）片段，
运行器在事务环境中按重复次数序列分别计时并输出原始样本。

功能特性

  - 基准目录：逐条赋值与批量写入、记录集合并与主键集合、手写循环与 Filtered、逐个浏览与批量浏览、显式循环与映射
  - 计时工具：与 timeit.repeat 一致，每次试验先执行 setup 再连续执行片段，计时期间关闭垃圾回收
  - 运行器：逐轮输出样本并返回报告，可选的最低加速比校验
  - 伙伴模型：res_partner 表及 bench_str 扩展字段

使用手册

1. 配置

	{
	    "Orm/Source/SQLite/default": {
	        "Addr": "file:ormbench.db"
	    },
	    "Bench/Loops": [1, 10, 100],
	    "Bench/Trials": 5
	}

2. 运行

	XOrm.Sandbox(XBench.PartnerAlias, func(env *XOrm.Env) error {
	    if _, err := XBench.Seed(env, 1000); err != nil {
	        return err
	    }
	    entry, _ := XBench.Lookup("field_settings_vs_write")
	    _, err := XBench.NewRunner(XPrefs.Asset()).Run(env, entry)
	    return err
	})

输出格式：

	=============== loops 1
	['0.00123', '0.00120', '0.00119', '0.00121', '0.00118']
	['0.00012', '0.00011', '0.00011', '0.00012', '0.00011']

每轮先输出空行和标题，再依次输出参考实现和优化实现的样本，全部轮次结束后输出一个空行。
预期加速比仅用于展示，运行器默认不做校验。
*/
package XBench
