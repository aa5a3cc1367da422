// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"strings"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.BENCH/XOrm"
)

// Entry 是基准目录中的一项，Pair 返回（参考实现，优化实现）两个片段。
type Entry struct {
	Name    string                    // 名称
	Speedup string                    // 预期加速比，仅用于展示
	Pair    func() (Snippet, Snippet) // 片段对
}

var catalog = []Entry{
	{Name: "field_settings_vs_write", Speedup: "10x", Pair: FieldSettingsVsWrite},
	{Name: "set_vs_recordset", Speedup: "10x", Pair: SetVsRecordset},
	{Name: "loop_vs_filtered", Speedup: "1x", Pair: LoopVsFiltered},
	{Name: "single_vs_multi_browse", Speedup: "2x", Pair: SingleVsMultiBrowse},
	{Name: "loop_vs_map", Speedup: "2x", Pair: LoopVsMap},
	{Name: "loop_vs_domain", Speedup: "1x", Pair: LoopVsDomain},
}

// Catalog 按声明顺序返回全部条目。
func Catalog() []Entry {
	entries := make([]Entry, len(catalog))
	copy(entries, catalog)
	return entries
}

// Lookup 按名称查找条目。
func Lookup(name string) (Entry, bool) {
	for _, entry := range catalog {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// FieldSettingsVsWrite 逐条赋值与一次批量写入。
func FieldSettingsVsWrite() (Snippet, Snippet) {
	slow := func(ctx *Context) error {
		for rec := range ctx.Records.Each() {
			if err := rec.Write(orm.Params{"bench_str": "benchmark"}); err != nil {
				return err
			}
		}
		return nil
	}
	fast := func(ctx *Context) error {
		return ctx.Records.Write(orm.Params{"bench_str": "benchmark"})
	}
	return slow, fast
}

// SetVsRecordset 逐条合并记录集与收集主键后一次浏览。
func SetVsRecordset() (Snippet, Snippet) {
	slow := func(ctx *Context) error {
		result := ctx.Records.Browse()
		for rec := range ctx.Records.Each() {
			result = result.Union(rec)
		}
		return nil
	}
	fast := func(ctx *Context) error {
		result := make(map[int]struct{})
		for rec := range ctx.Records.Each() {
			id, err := rec.Id()
			if err != nil {
				return err
			}
			result[id] = struct{}{}
		}
		ctx.Records.Browse(setIds(result)...)
		return nil
	}
	return slow, fast
}

// LoopVsFiltered 手写循环筛选与 Filtered。
func LoopVsFiltered() (Snippet, Snippet) {
	fast := func(ctx *Context) error {
		_, err := ctx.Records.Filtered(startsWithA)
		return err
	}
	return loopStartsWithA, fast
}

// SingleVsMultiBrowse 逐个主键浏览与一次浏览全部主键。
func SingleVsMultiBrowse() (Snippet, Snippet) {
	slow := func(ctx *Context) error {
		for _, id := range ctx.Records.Ids() {
			partner, err := ctx.Records.Browse(id).Record()
			if err != nil {
				return err
			}
			_ = partner.Name
		}
		return nil
	}
	fast := func(ctx *Context) error {
		for rec := range ctx.Records.Browse(ctx.Records.Ids()...).Each() {
			partner, err := rec.Record()
			if err != nil {
				return err
			}
			_ = partner.Name
		}
		return nil
	}
	return slow, fast
}

// LoopVsMap 显式循环调用与惰性映射。
func LoopVsMap() (Snippet, Snippet) {
	slow := func(ctx *Context) error {
		for _, id := range ctx.Records.Ids() {
			incrementID(id)
		}
		return nil
	}
	fast := func(ctx *Context) error {
		_ = XOrm.Map(ctx.Records.Ids(), incrementID)
		return nil
	}
	return slow, fast
}

// LoopVsDomain 手写循环筛选与条件表达式筛选。
func LoopVsDomain() (Snippet, Snippet) {
	fast := func(ctx *Context) error {
		_, err := ctx.Records.FilteredCond(XOrm.Cond("name istartswith {0}", "a"))
		return err
	}
	return loopStartsWithA, fast
}

func loopStartsWithA(ctx *Context) error {
	result := make(map[int]struct{})
	for rec := range ctx.Records.Each() {
		partner, err := rec.Record()
		if err != nil {
			return err
		}
		if startsWithA(partner) {
			result[partner.ID] = struct{}{}
		}
	}
	ctx.Records.Browse(setIds(result)...)
	return nil
}

func startsWithA(partner *Partner) bool {
	return strings.HasPrefix(strings.ToLower(partner.Name), "a")
}

//go:noinline
func incrementID(id int) int { return id + 1 }

func setIds(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
