// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XObject"
	"github.com/eframework-org/GO.UTIL/XString"
)

// IModel 定义了数据模型的基础接口。
// 实现此接口的类型可以通过环境（Env）进行检索、浏览和写入。
type IModel interface {
	// Ctor 执行模型的构造初始化。
	// obj 为模型实例，必须是实现了 IModel 接口的结构体指针。
	Ctor(obj any)

	// AliasName 返回数据库别名。
	// 此方法必须由子类实现。
	AliasName() string

	// TableName 返回数据表名称。
	// 此方法必须由子类实现。
	TableName() string

	// ModelUnique 返回模型的唯一标识，格式为 "数据库别名_表名"。
	ModelUnique() string

	// DataUnique 返回数据记录的唯一标识，格式为 "模型标识_主键值"。
	DataUnique() string

	// DataID 返回整型的主键值，主键不存在或非整型时返回 0。
	DataID() int

	// DataValue 获取指定字段的值，字段不存在则返回 nil。
	DataValue(field string) any

	// IsValid 检查或设置对象的有效性。
	IsValid(value ...bool) bool

	// Clone 创建对象的拷贝。
	Clone() IModel

	// Json 将对象转换为 JSON 字符串。
	Json() string

	// Equals 比较两个对象的所有数据库字段是否相等。
	Equals(model IModel) bool

	// Matchs 检查对象是否匹配指定条件。
	Matchs(cond ...*Condition) bool
}

// Model 实现了 IModel 接口的基础模型。
// T 为具体的模型类型，必须是结构体类型。
// 所有的具体模型类型都应该嵌入此类型。
type Model[T any] struct {
	this        IModel `orm:"-" json:"-"` // 模型实例
	modelUnique string `orm:"-" json:"-"` // 模型标识
	isValid     bool   `orm:"-" json:"-"` // 有效标志
}

// Ctor 初始化模型实例。
// obj 必须实现 IModel 接口。
func (md *Model[T]) Ctor(obj any) {
	md.this = obj.(IModel)
	md.modelUnique = ""
	md.isValid = false
}

// AliasName 返回数据库别名。
// 此方法需要被子类重写，默认会触发 panic。
func (md *Model[T]) AliasName() string { XLog.Panic("Alias name is nil."); return "" }

// TableName 返回数据表名称。
// 此方法需要被子类重写，默认会触发 panic。
func (md *Model[T]) TableName() string { XLog.Panic("Table name is nil."); return "" }

// ModelUnique 返回模型的唯一标识。
func (md *Model[T]) ModelUnique() string {
	if XString.IsEmpty(md.modelUnique) {
		md.modelUnique = fmt.Sprintf("%v_%v", md.this.AliasName(), md.this.TableName())
	}
	return md.modelUnique
}

// DataUnique 返回数据记录的唯一标识。
// 自增主键在写入后才会确定，故不缓存该值。
func (md *Model[T]) DataUnique() string {
	meta := getModelMeta(md.this)
	if meta == nil {
		XLog.Error("XOrm.Model.DataUnique(%v): model info is nil.", md.this.ModelUnique())
		return ""
	}
	return fmt.Sprintf("%v_%v", md.this.ModelUnique(), md.this.DataValue(meta.pk.name))
}

// DataID 返回整型的主键值。
func (md *Model[T]) DataID() int {
	meta := getModelMeta(md.this)
	if meta == nil {
		return 0
	}
	if id, ok := toInt64(md.this.DataValue(meta.pk.name)); ok {
		return int(id)
	}
	return 0
}

// DataValue 获取指定字段的值。
func (md *Model[T]) DataValue(field string) any {
	vtp := reflect.ValueOf(md.this).Elem()
	fld := vtp.FieldByName(field)
	if fld.IsValid() {
		return fld.Interface()
	}
	return nil
}

// IsValid 检查或设置对象的有效性。
func (md *Model[T]) IsValid(value ...bool) bool {
	if len(value) > 0 {
		md.isValid = value[0]
	}
	return md.isValid
}

// Clone 创建对象的拷贝，拷贝后的对象为有效状态。
func (md *Model[T]) Clone() IModel {
	src, ok := md.this.(any).(*T)
	if !ok || src == nil {
		XLog.Error("XOrm.Model.Clone(%v): invalid pointer.", md.this.TableName())
		return md.this
	}
	dst := new(T)
	*dst = *src
	if model, ok := any(dst).(IModel); ok {
		model.Ctor(dst)
		model.IsValid(true)
		return model
	}
	return nil
}

// Json 将对象转换为 JSON 字符串。
func (md *Model[T]) Json() string {
	result, _ := XObject.ToJson(md.this)
	return result
}

// Equals 比较两个对象是否相等。
func (md *Model[T]) Equals(model IModel) bool {
	if md.this == model {
		return true
	}
	if md.this == nil || model == nil {
		return false
	}
	meta := getModelMeta(md.this)
	if meta == nil {
		return false
	}
	for _, field := range meta.fields {
		if !reflect.DeepEqual(md.this.DataValue(field.name), model.DataValue(field.name)) {
			return false
		}
	}
	return true
}

// Matchs 检查对象是否匹配指定条件。
// 从 orm.Condition 直接创建的条件无法在内存中匹配，此时返回 false 并记录错误。
func (md *Model[T]) Matchs(cond ...*Condition) bool {
	if len(cond) == 0 || cond[0] == nil {
		return true
	}
	meta := getModelMeta(md.this)
	if meta == nil {
		return false
	}
	if !cond[0].Matchable() {
		XLog.Error("XOrm.Model.Matchs(%v): raw condition can't be matched in memory.", md.this.TableName())
		return false
	}
	return cond[0].match(md.this, meta)
}

// compareValue 根据操作符对字段值和参数进行比较。
func compareValue(cvalue any, operator string, arg any) bool {
	switch operator {
	case "isnull":
		want, _ := arg.(bool)
		return isNullValue(cvalue) == want
	case "in":
		return inValues(cvalue, arg)
	case "exact":
		return equalValue(cvalue, arg)
	case "ne":
		return !equalValue(cvalue, arg)
	case "iexact":
		s, p, ok := stringPair(cvalue, arg)
		return ok && strings.EqualFold(s, p)
	case "gt", "gte", "lt", "lte":
		return compareOrdered(cvalue, operator, arg)
	case "contains", "startswith", "endswith":
		s, p, ok := stringPair(cvalue, arg)
		return ok && matchString(s, p, operator)
	case "icontains", "istartswith", "iendswith":
		s, p, ok := stringPair(cvalue, arg)
		return ok && matchString(strings.ToLower(s), strings.ToLower(p), operator[1:])
	default:
		XLog.Error("XOrm.Model.compareValue: operator: %v wasn't supported.", operator)
		return false
	}
}

func isNullValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func inValues(cvalue, arg any) bool {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return equalValue(cvalue, arg)
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValue(cvalue, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

func equalValue(cvalue, arg any) bool {
	if a, ok := toInt64(cvalue); ok {
		if b, ok := toInt64(arg); ok {
			return a == b
		}
	}
	if a, ok := toFloat64(cvalue); ok {
		if b, ok := toFloat64(arg); ok {
			return a == b
		}
	}
	return reflect.DeepEqual(cvalue, arg)
}

func compareOrdered(cvalue any, operator string, arg any) bool {
	var c int
	if a, ok := toFloat64(cvalue); ok {
		b, ok := toFloat64(arg)
		if !ok {
			return false
		}
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	} else if s, p, ok := stringPair(cvalue, arg); ok {
		c = strings.Compare(s, p)
	} else {
		return false
	}
	switch operator {
	case "gt":
		return c > 0
	case "gte":
		return c >= 0
	case "lt":
		return c < 0
	default:
		return c <= 0
	}
}

func stringPair(cvalue, arg any) (string, string, bool) {
	s, ok1 := cvalue.(string)
	p, ok2 := arg.(string)
	return s, p, ok1 && ok2
}

func matchString(s, pattern, operator string) bool {
	switch operator {
	case "contains":
		return strings.Contains(s, pattern)
	case "startswith":
		return strings.HasPrefix(s, pattern)
	default:
		return strings.HasSuffix(s, pattern)
	}
}

// toInt64 是 Int64 类型转换辅助函数。
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case bool, string, []byte:
		return 0, false
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint()), true
		}
		return 0, false
	}
}

// scanInt64 转换数据库驱动返回的整型值，兼容字节串和字符串。
func scanInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	}
	return toInt64(v)
}

// toFloat64 是 Float64 类型转换辅助函数。
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case nil, string, []byte, bool:
		return 0, false
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		if n, ok := toInt64(v); ok {
			return float64(n), true
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
			return rv.Float(), true
		}
		return 0, false
	}
}
