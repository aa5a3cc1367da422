// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"iter"

	"github.com/eframework-org/GO.UTIL/XCollect"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// prefetchBatch 是单次回源查询的最大主键数量。
const prefetchBatch = 1000

// Recordset 是同一模型的有序记录集合，持有主键列表而非记录本身。
// 记录在首次读取时按预取集合批量加载到环境缓存中。
type Recordset[T IModel] struct {
	env      *Env
	model    T
	meta     *modelMeta
	ids      []int
	prefetch []int // 读取任一记录时一并加载的主键集合
}

func newRecordset[T IModel](env *Env, model T, meta *modelMeta, ids []int, prefetch []int) *Recordset[T] {
	if prefetch == nil {
		prefetch = ids
	}
	return &Recordset[T]{env: env, model: model, meta: meta, ids: ids, prefetch: prefetch}
}

// Env 返回记录集所属的环境。
func (rs *Recordset[T]) Env() *Env { return rs.env }

// Ids 返回主键列表的拷贝。
func (rs *Recordset[T]) Ids() []int {
	ids := make([]int, len(rs.ids))
	copy(ids, rs.ids)
	return ids
}

// Len 返回记录数量。
func (rs *Recordset[T]) Len() int { return len(rs.ids) }

// Contains 判断记录集是否包含指定主键。
func (rs *Recordset[T]) Contains(id int) bool { return XCollect.Contains(rs.ids, id) }

// Id 返回单条记录的主键，记录集不是单条记录时返回 ErrNotSingleton。
func (rs *Recordset[T]) Id() (int, error) {
	if len(rs.ids) != 1 {
		return 0, fmt.Errorf("XOrm.Recordset(%v).Id: %w, got %v records", rs.meta.table, ErrNotSingleton, len(rs.ids))
	}
	return rs.ids[0], nil
}

// Browse 返回同一环境中指定主键的记录集，与 XOrm.Browse 等价。
func (rs *Recordset[T]) Browse(ids ...int) *Recordset[T] {
	return newRecordset(rs.env, rs.model, rs.meta, ids, nil)
}

// Each 逐条遍历记录集，每条记录都是以当前记录集为预取集合的单条记录集。
func (rs *Recordset[T]) Each() iter.Seq[*Recordset[T]] {
	return func(yield func(*Recordset[T]) bool) {
		for i := range rs.ids {
			if !yield(newRecordset(rs.env, rs.model, rs.meta, rs.ids[i:i+1], rs.prefetch)) {
				return
			}
		}
	}
}

// Union 合并多个记录集并去重，保持首次出现的顺序。
func (rs *Recordset[T]) Union(others ...*Recordset[T]) *Recordset[T] {
	size := len(rs.ids)
	for _, other := range others {
		size += len(other.ids)
	}
	seen := make(map[int]struct{}, size)
	ids := make([]int, 0, size)
	appendIds := func(src []int) {
		for _, id := range src {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	appendIds(rs.ids)
	for _, other := range others {
		appendIds(other.ids)
	}
	return newRecordset(rs.env, rs.model, rs.meta, ids, nil)
}

// Records 按主键顺序返回记录，未缓存的记录将按预取集合批量加载。
func (rs *Recordset[T]) Records() ([]T, error) {
	if err := rs.env.check("XOrm.Recordset.Records"); err != nil {
		return nil, err
	}
	if err := rs.fetch(); err != nil {
		return nil, err
	}
	records := make([]T, 0, len(rs.ids))
	for _, id := range rs.ids {
		rec, err := rs.load(id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record 返回单条记录，记录集不是单条记录时返回 ErrNotSingleton。
func (rs *Recordset[T]) Record() (T, error) {
	var zero T
	if len(rs.ids) != 1 {
		return zero, fmt.Errorf("XOrm.Recordset(%v).Record: %w, got %v records", rs.meta.table, ErrNotSingleton, len(rs.ids))
	}
	records, err := rs.Records()
	if err != nil {
		return zero, err
	}
	return records[0], nil
}

// Filtered 返回满足 pred 的记录组成的记录集。
func (rs *Recordset[T]) Filtered(pred func(T) bool) (*Recordset[T], error) {
	records, err := rs.Records()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(records))
	for i, rec := range records {
		if pred(rec) {
			ids = append(ids, rs.ids[i])
		}
	}
	return newRecordset(rs.env, rs.model, rs.meta, ids, nil), nil
}

// FilteredCond 返回满足条件的记录组成的记录集。
// 由表达式创建的条件在内存中匹配，原始的 orm.Condition 则回源查询，分页信息均被忽略。
func (rs *Recordset[T]) FilteredCond(cond *Condition) (*Recordset[T], error) {
	if cond == nil || cond.Base == nil || cond.Base.IsEmpty() {
		return newRecordset(rs.env, rs.model, rs.meta, rs.Ids(), nil), nil
	}
	if cond.Matchable() {
		return rs.Filtered(func(rec T) bool { return rec.Matchs(cond) })
	}

	if err := rs.env.check("XOrm.Recordset.FilteredCond"); err != nil {
		return nil, err
	}
	startTime := XTime.GetMicrosecond()
	matched := make(map[int]struct{}, len(rs.ids))
	var err error
	for _, chunk := range chunkIds(rs.ids) {
		var found []int
		if found, err = rs.env.searchIds(rs.model, rs.meta, cond.Base, chunk); err != nil {
			break
		}
		for _, id := range found {
			matched[id] = struct{}{}
		}
	}
	rs.env.record(opSearch, rs.model, startTime, err)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(matched))
	for _, id := range rs.ids {
		if _, ok := matched[id]; ok {
			ids = append(ids, id)
		}
	}
	return newRecordset(rs.env, rs.model, rs.meta, ids, nil), nil
}

// String 返回记录集的文本描述。
func (rs *Recordset[T]) String() string {
	return fmt.Sprintf("%v%v", rs.meta.table, rs.ids)
}

// Mapped 对记录集中的每条记录应用 fn 并立即返回结果。
func Mapped[T IModel, V any](rs *Recordset[T], fn func(T) V) ([]V, error) {
	records, err := rs.Records()
	if err != nil {
		return nil, err
	}
	result := make([]V, len(records))
	for i, rec := range records {
		result[i] = fn(rec)
	}
	return result, nil
}

// Map 返回对 ids 逐个应用 fn 的惰性序列，只有在遍历时才会调用 fn。
func Map[V any](ids []int, fn func(int) V) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, id := range ids {
			if !yield(fn(id)) {
				return
			}
		}
	}
}

// chunkIds 将主键列表按 prefetchBatch 分批。
func chunkIds(ids []int) [][]int {
	var chunks [][]int
	for start := 0; start < len(ids); start += prefetchBatch {
		end := min(start+prefetchBatch, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
