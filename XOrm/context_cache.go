// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eframework-org/GO.UTIL/XCollect"
	"github.com/eframework-org/GO.UTIL/XLog"
)

// getCache 获取环境中指定模型的记录缓存。
// 返回对象映射（键为主键值），如果不存在则返回 nil。
func (env *Env) getCache(model IModel) *XCollect.Map {
	value, _ := env.cache.Load(model.ModelUnique())
	if value != nil {
		return value.(*XCollect.Map)
	}
	return nil
}

// setCache 将记录保存到环境缓存中，已存在的记录会被覆盖。
func (env *Env) setCache(model IModel) {
	omap, _ := env.cache.LoadOrStore(model.ModelUnique(), XCollect.NewMap())
	omap.(*XCollect.Map).Store(model.DataID(), model)
}

// loadCache 从环境缓存中读取记录。
func (env *Env) loadCache(model IModel, id int) IModel {
	if cache := env.getCache(model); cache != nil {
		if value, _ := cache.Load(id); value != nil {
			return value.(IModel)
		}
	}
	return nil
}

// evictCache 移除环境缓存中的指定记录。
func (env *Env) evictCache(model IModel, ids []int) {
	if cache := env.getCache(model); cache != nil {
		for _, id := range ids {
			cache.Delete(id)
		}
	}
}

// Invalidate 清除环境中数据模型的记录缓存。
// models 为要清除的数据模型，若未指定则清除所有模型的缓存。
func (env *Env) Invalidate(models ...IModel) {
	if len(models) == 0 {
		env.cache.Clear()
		XLog.Notice("XOrm.Invalidate: env-%v cache of all models has been invalidated.", env.id)
		return
	}
	for _, model := range models {
		if model == nil {
			continue
		}
		env.cache.Delete(model.ModelUnique())
		XLog.Notice("XOrm.Invalidate: env-%v cache of model: %v has been invalidated.", env.id, model.ModelUnique())
	}
}

// Cached 返回环境中指定模型已缓存的记录数量。
func (env *Env) Cached(model IModel) int {
	count := 0
	if cache := env.getCache(model); cache != nil {
		cache.Range(func(key, value any) bool {
			count++
			return true
		})
	}
	return count
}

// Print 生成环境缓存的文本信息。
func (env *Env) Print() string {
	var ctt strings.Builder
	ctt.WriteString(fmt.Sprintf("[Env-%v]\n", env.id))
	env.cache.Range(func(k1, v1 any) bool {
		var lines []string
		v1.(*XCollect.Map).Range(func(k2, v2 any) bool {
			lines = append(lines, fmt.Sprintf("\t%v_%v = %v\n", k1, k2, v2.(IModel).Json()))
			return true
		})
		sort.Strings(lines)
		for _, line := range lines {
			ctt.WriteString(line)
		}
		return true
	})
	return ctt.String()
}
