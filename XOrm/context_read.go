// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// fetch 加载记录集中未缓存的记录。
// 只要记录集自身有记录未命中，就会把预取集合中所有未缓存的记录按批次一并加载，
// 每批最多 prefetchBatch 条，一批一次查询。
func (rs *Recordset[T]) fetch() error {
	cache := rs.env.getCache(rs.model)
	cached := func(id int) bool {
		if cache == nil {
			return false
		}
		value, _ := cache.Load(id)
		return value != nil
	}

	hit := true
	for _, id := range rs.ids {
		if !cached(id) {
			hit = false
			break
		}
	}
	if hit {
		return nil
	}

	seen := make(map[int]struct{}, len(rs.prefetch)+len(rs.ids))
	missing := make([]int, 0, len(rs.prefetch)+len(rs.ids))
	collect := func(ids []int) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if !cached(id) {
				missing = append(missing, id)
			}
		}
	}
	collect(rs.ids)
	collect(rs.prefetch)

	startTime := XTime.GetMicrosecond()
	var err error
	for _, chunk := range chunkIds(missing) {
		var rows []T
		if _, err = rs.env.tx.QueryTable(rs.model).Filter(rs.meta.pk.column+"__in", chunk).Limit(-1).All(&rows); err != nil {
			break
		}
		for _, row := range rows {
			row.Ctor(row)
			row.IsValid(true)
			rs.env.setCache(row)
		}
	}
	rs.env.record(opPrefetch, rs.model, startTime, err)
	if err != nil {
		XLog.Error("XOrm.Recordset(%v): prefetch %v records failed: %v", rs.meta.table, len(missing), err)
		return fmt.Errorf("XOrm.Recordset(%v): prefetch: %w", rs.meta.table, err)
	}
	return nil
}

// load 从环境缓存中读取已加载的记录。
func (rs *Recordset[T]) load(id int) (T, error) {
	if value := rs.env.loadCache(rs.model, id); value != nil {
		if rec, ok := value.(T); ok {
			return rec, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("XOrm.Recordset(%v): record %v was not found", rs.meta.table, id)
}
