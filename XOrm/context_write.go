// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// Write 将 values 写入记录集中的所有记录，每批主键一条 UPDATE 语句。
// values 的键为字段名或列名，写入成功后同步更新环境缓存中已加载的记录。
//
// 使用示例：
//
//	err := records.Write(orm.Params{"bench_str": "benchmark"})
func (rs *Recordset[T]) Write(values orm.Params) error {
	if err := rs.env.check("XOrm.Recordset.Write"); err != nil {
		return err
	}
	if len(rs.ids) == 0 || len(values) == 0 {
		return nil
	}

	startTime := XTime.GetMicrosecond()
	var err error
	for _, chunk := range chunkIds(rs.ids) {
		if _, err = rs.env.tx.QueryTable(rs.model).Filter(rs.meta.pk.column+"__in", chunk).Update(values); err != nil {
			break
		}
	}
	rs.env.record(opWrite, rs.model, startTime, err)
	if err != nil {
		rs.env.evictCache(rs.model, rs.ids)
		XLog.Error("XOrm.Recordset(%v).Write: update %v records failed: %v", rs.meta.table, len(rs.ids), err)
		return fmt.Errorf("XOrm.Recordset(%v).Write: %w", rs.meta.table, err)
	}

	rs.env.syncCache(rs.model, rs.meta, rs.ids, values)
	return nil
}

// syncCache 将写入的值同步到已缓存的记录，无法赋值的记录将从缓存中移除。
func (env *Env) syncCache(model IModel, meta *modelMeta, ids []int, values orm.Params) {
	cache := env.getCache(model)
	if cache == nil {
		return
	}
	for _, id := range ids {
		value, _ := cache.Load(id)
		if value == nil {
			continue
		}
		rv := reflect.ValueOf(value).Elem()
		for key, val := range values {
			if !assignField(rv, meta.lookup(key), val) {
				cache.Delete(id)
				break
			}
		}
	}
}

func assignField(rv reflect.Value, field *fieldMeta, val any) bool {
	if field == nil {
		return false
	}
	fv := rv.FieldByName(field.name)
	if !fv.IsValid() || !fv.CanSet() {
		return false
	}
	if val == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return true
	}
	vv := reflect.ValueOf(val)
	switch {
	case vv.Type().AssignableTo(fv.Type()):
		fv.Set(vv)
	case vv.Type().ConvertibleTo(fv.Type()) && vv.Kind() != reflect.String && fv.Kind() != reflect.String:
		fv.Set(vv.Convert(fv.Type()))
	default:
		return false
	}
	return true
}

// Create 插入新记录并返回由它们组成的记录集，自增主键在插入后回填。
// 插入的记录会被放入环境缓存。
func Create[T IModel](env *Env, records ...T) (*Recordset[T], error) {
	if err := env.check("XOrm.Create"); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("XOrm.Create: no records")
	}
	model := records[0]
	meta := getModelMeta(model)
	if meta == nil {
		XLog.Critical("XOrm.Create: model of %v was not registered: %v", model.ModelUnique(), XLog.Caller(1, false))
		return nil, fmt.Errorf("XOrm.Create(%v): %w", model.ModelUnique(), ErrNotRegistered)
	}

	startTime := XTime.GetMicrosecond()
	ids := make([]int, 0, len(records))
	var err error
	for _, rec := range records {
		if _, err = env.tx.Insert(rec); err != nil {
			break
		}
		rec.IsValid(true)
		env.setCache(rec)
		ids = append(ids, rec.DataID())
	}
	env.record(opCreate, model, startTime, err)
	if err != nil {
		XLog.Error("XOrm.Create(%v): insert failed after %v records: %v", meta.table, len(ids), err)
		return nil, fmt.Errorf("XOrm.Create(%v): %w", meta.table, err)
	}
	return newRecordset(env, model, meta, ids, nil), nil
}
