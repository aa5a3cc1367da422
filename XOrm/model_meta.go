// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
)

// fieldMeta 定义了模型字段的描述信息。
type fieldMeta struct {
	name   string // 字段名
	column string // 列名
	pk     bool   // 是否为主键
	auto   bool   // 是否自增
}

// modelMeta 定义了模型的描述信息。
type modelMeta struct {
	unique  string                // 模型标识
	table   string                // 表名
	pk      *fieldMeta            // 主键字段
	fields  []*fieldMeta          // 数据库字段
	columns map[string]*fieldMeta // 按列名索引的字段
	names   map[string]*fieldMeta // 按字段名索引的字段
}

// lookup 按列名或字段名查找字段。
func (mm *modelMeta) lookup(name string) *fieldMeta {
	if f := mm.columns[name]; f != nil {
		return f
	}
	return mm.names[name]
}

var (
	// modelMetaMap 存储模型信息，键为模型标识，值为 *modelMeta。
	modelMetaMap sync.Map

	// modelMetaMutex 用于保护模型注册的互斥锁。
	modelMetaMutex sync.Mutex
)

// getModelMeta 获取指定模型的信息。
// model 为模型实例。
// 返回模型的描述信息，如果模型未注册则返回 nil。
func getModelMeta(model IModel) *modelMeta {
	if model == nil {
		return nil
	}
	if value, _ := modelMetaMap.Load(model.ModelUnique()); value != nil {
		return value.(*modelMeta)
	}
	return nil
}

// Meta 注册一个模型。
// model 为模型实例，须在首次开启环境（Begin）之前注册。
// 如果模型为 nil、已注册或缺少主键，将触发 panic。
func Meta(model IModel) {
	if model == nil {
		XLog.Panic("XOrm.Meta: nil model instance.")
		return
	}

	modelMetaMutex.Lock()
	defer modelMetaMutex.Unlock()

	unique := model.ModelUnique()
	if _, loaded := modelMetaMap.Load(unique); loaded {
		XLog.Panic("XOrm.Meta: dumplicated model of %v.", unique)
		return
	}

	meta := parseModelMeta(model)
	if meta.pk == nil {
		XLog.Panic("XOrm.Meta: primary key of %v was not found.", unique)
		return
	}

	orm.RegisterModel(model)
	modelMetaMap.Store(unique, meta)
}

// parseModelMeta 解析模型结构体的 orm 标签。
func parseModelMeta(model IModel) *modelMeta {
	meta := &modelMeta{
		unique:  model.ModelUnique(),
		table:   model.TableName(),
		columns: make(map[string]*fieldMeta),
		names:   make(map[string]*fieldMeta),
	}
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	parseModelFields(meta, typ)

	if meta.pk == nil { // 与 beego 一致，名为 Id 的整型字段视为主键
		for _, f := range meta.fields {
			if strings.EqualFold(f.name, "id") {
				f.pk = true
				meta.pk = f
				break
			}
		}
	}
	return meta
}

func parseModelFields(meta *modelMeta, typ reflect.Type) {
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			parseModelFields(meta, sf.Type)
			continue
		}
		if sf.PkgPath != "" {
			continue
		}
		tag := sf.Tag.Get("orm")
		if tag == "-" {
			continue
		}
		f := &fieldMeta{name: sf.Name, column: snakeString(sf.Name)}
		for _, part := range strings.Split(tag, ";") {
			part = strings.TrimSpace(part)
			switch {
			case part == "pk":
				f.pk = true
			case part == "auto":
				f.auto = true
			case strings.HasPrefix(part, "column(") && strings.HasSuffix(part, ")"):
				f.column = part[len("column(") : len(part)-1]
			}
		}
		if f.pk && meta.pk == nil {
			meta.pk = f
		}
		meta.fields = append(meta.fields, f)
		meta.columns[f.column] = f
		meta.names[f.name] = f
	}
}

// snakeString 将驼峰命名转换为下划线命名，未指定 column 标签时使用。
func snakeString(s string) string {
	var sb strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				sb.WriteRune('_')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
