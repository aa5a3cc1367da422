// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// Search 检索满足条件的记录，仅查询主键并按主键升序返回记录集。
// model 为模型实例，须通过 Meta 注册。
// cond 为可选的查询条件，其 Limit 和 Offset 用于分页，未指定 Limit 时不限制数量。
//
// 记录本身不会被加载，首次读取任一记录时才会批量预取。
//
// 使用示例：
//
//	records, err := XOrm.Search(env, XObject.New[Partner]())
//	records, err := XOrm.Search(env, XObject.New[Partner](), XOrm.Cond("name istartswith {0}", "a"))
func Search[T IModel](env *Env, model T, cond ...*Condition) (*Recordset[T], error) {
	if err := env.check("XOrm.Search"); err != nil {
		return nil, err
	}
	meta := getModelMeta(model)
	if meta == nil {
		XLog.Critical("XOrm.Search: model of %v was not registered: %v", model.ModelUnique(), XLog.Caller(1, false))
		return nil, fmt.Errorf("XOrm.Search(%v): %w", model.ModelUnique(), ErrNotRegistered)
	}

	qs := env.tx.QueryTable(model)
	limit, offset := -1, 0
	if len(cond) > 0 && cond[0] != nil {
		if cond[0].Base != nil && !cond[0].Base.IsEmpty() {
			qs = qs.SetCond(cond[0].Base)
		}
		if cond[0].Limit > 0 {
			limit = cond[0].Limit
		}
		offset = cond[0].Offset
	}

	startTime := XTime.GetMicrosecond()
	ids, err := flatIds(qs.OrderBy(meta.pk.column).Limit(limit, offset), meta)
	env.record(opSearch, model, startTime, err)
	if err != nil {
		XLog.Error("XOrm.Search(%v): query failed: %v", meta.table, err)
		return nil, fmt.Errorf("XOrm.Search(%v): %w", meta.table, err)
	}
	return newRecordset(env, model, meta, ids, nil), nil
}

// Browse 返回指定主键的记录集，不访问数据库。
// 记录是否存在在首次读取时确认，不存在的记录读取时将返回错误。
func Browse[T IModel](env *Env, model T, ids ...int) (*Recordset[T], error) {
	if err := env.check("XOrm.Browse"); err != nil {
		return nil, err
	}
	meta := getModelMeta(model)
	if meta == nil {
		XLog.Critical("XOrm.Browse: model of %v was not registered: %v", model.ModelUnique(), XLog.Caller(1, false))
		return nil, fmt.Errorf("XOrm.Browse(%v): %w", model.ModelUnique(), ErrNotRegistered)
	}
	return newRecordset(env, model, meta, ids, nil), nil
}

// searchIds 在指定主键范围内检索满足条件的主键。
func (env *Env) searchIds(model IModel, meta *modelMeta, cond *orm.Condition, ids []int) ([]int, error) {
	where := orm.NewCondition()
	if cond != nil && !cond.IsEmpty() {
		where = where.AndCond(cond)
	}
	where = where.And(meta.pk.column+"__in", ids)
	return flatIds(env.tx.QueryTable(model).SetCond(where).Limit(-1), meta)
}

// flatIds 读取查询结果中的主键列。
func flatIds(qs orm.QuerySeter, meta *modelMeta) ([]int, error) {
	var list orm.ParamsList
	if _, err := qs.ValuesFlat(&list, meta.pk.column); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(list))
	for _, v := range list {
		id, ok := scanInt64(v)
		if !ok {
			return nil, fmt.Errorf("invalid primary key %v of %v", v, meta.table)
		}
		ids = append(ids, int(id))
	}
	return ids, nil
}
