// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"github.com/eframework-org/GO.BENCH/XOrm"
)

// Context 是 setup 与两个变体共享的执行上下文。
type Context struct {
	Env     *XOrm.Env                 // 事务环境
	Records *XOrm.Recordset[*Partner] // setup 绑定的记录集
}

// Snippet 是可计时的代码片段。
type Snippet func(ctx *Context) error

// SearchAll 检索全部伙伴并绑定到 ctx.Records。
func SearchAll(ctx *Context) error {
	records, err := XOrm.Search(ctx.Env, NewPartner())
	if err != nil {
		return err
	}
	ctx.Records = records
	return nil
}

// ColdSearch 先清除环境中的伙伴缓存再执行 SearchAll，使每次试验都从冷缓存开始。
func ColdSearch(ctx *Context) error {
	ctx.Env.Invalidate(NewPartner())
	return SearchAll(ctx)
}
