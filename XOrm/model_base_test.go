// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/eframework-org/GO.UTIL/XObject"
	"github.com/stretchr/testify/assert"
)

// TestModelBasic 测试模型的基础信息。
func TestModelBasic(t *testing.T) {
	setupTest(t)

	model := NewTestPartner()
	model.ID = 12
	model.Name = "test"

	assert.Equal(t, TestAliasName+"_"+TestTableName, model.ModelUnique(), "模型标识应当由别名和表名组成。")
	assert.Equal(t, fmt.Sprintf("%v_%v_12", TestAliasName, TestTableName), model.DataUnique(), "数据标识应当由模型标识和主键组成。")
	assert.Equal(t, 12, model.DataID())
	assert.Equal(t, "test", model.DataValue("Name"))
	assert.Nil(t, model.DataValue("Unknown"), "不存在的字段应当返回 nil。")

	model.ID = 13
	assert.Equal(t, 13, model.DataID(), "主键变化后 DataID 应当同步变化。")
	assert.True(t, strings.HasSuffix(model.DataUnique(), "_13"), "主键变化后数据标识应当同步变化。")

	type Unregistered struct {
		Model[Unregistered] `orm:"-" json:"-"`
		ID                  int
	}
	assert.Panics(t, func() { XObject.New[Unregistered]().ModelUnique() }, "未实现 AliasName 的模型应当 panic。")
}

// TestModelUtility 测试模型的工具方法。
func TestModelUtility(t *testing.T) {
	setupTest(t)

	model := NewTestPartner()
	model.ID = 1
	model.Name = "test_string"
	model.Level = 100
	model.Note = "note"

	t.Run("Clone", func(t *testing.T) {
		cloned := model.Clone().(*TestPartner)
		assert.NotSame(t, model, cloned, "克隆的对象应当是新的实例。")
		assert.Equal(t, model.ID, cloned.ID)
		assert.Equal(t, model.Name, cloned.Name)
		assert.Equal(t, model.Level, cloned.Level)
		assert.Equal(t, model.Note, cloned.Note)
		assert.True(t, cloned.IsValid(), "克隆的对象应当为有效状态。")

		cloned.Name = "changed"
		assert.Equal(t, "test_string", model.Name, "修改克隆对象不应当影响原对象。")
		assert.Equal(t, "changed", cloned.DataValue("Name"), "克隆对象的实例指针应当指向自身。")
	})

	t.Run("Equals", func(t *testing.T) {
		assert.True(t, model.Equals(model), "相同对象应该等于自身。")

		same := NewTestPartner()
		same.ID, same.Name, same.Level, same.Note = model.ID, model.Name, model.Level, model.Note
		assert.True(t, model.Equals(same), "具有相同值的对象应该相等。")

		same.Level++
		assert.False(t, model.Equals(same), "具有不同值的对象不应该相等。")
		assert.False(t, model.Equals(nil), "非空对象不应该等于 nil。")

		type DifferentModel struct {
			Model[DifferentModel] `orm:"-" json:"-"`
			ID                    int    `orm:"column(id);pk;auto"`
			Value                 string `orm:"column(value)"`
		}
		different := XObject.New[DifferentModel]()
		different.ID = model.ID
		assert.False(t, model.Equals(different), "不同类型的对象不应该相等。")

		edge1, edge2 := NewTestPartner(), NewTestPartner()
		assert.True(t, edge1.Equals(edge2), "零值对象应该相等。")
		edge1.Level, edge2.Level = math.MaxInt32, math.MaxInt32
		assert.True(t, edge1.Equals(edge2), "具有最大值的对象应该相等。")
	})

	t.Run("Json", func(t *testing.T) {
		json := model.Json()
		assert.Contains(t, json, fmt.Sprintf(`"ID":%d`, model.ID), "JSON 应该包含 ID 字段。")
		assert.Contains(t, json, fmt.Sprintf(`"Name":"%s"`, model.Name), "JSON 应该包含 Name 字段。")
		assert.Contains(t, json, fmt.Sprintf(`"Level":%d`, model.Level), "JSON 应该包含 Level 字段。")
		assert.NotContains(t, json, "Model", "JSON 不应该包含基础模型。")
	})

	t.Run("IsValid", func(t *testing.T) {
		model2 := NewTestPartner()
		assert.False(t, model2.IsValid(), "新模型默认应该是无效的。")
		model2.IsValid(true)
		assert.True(t, model2.IsValid(), "设置为有效后模型应该是有效的。")
		model2.IsValid(false)
		assert.False(t, model2.IsValid(), "设置为无效后模型应该是无效的。")
	})
}

// TestModelCompare 测试字段值比较。
func TestModelCompare(t *testing.T) {
	tests := []struct {
		value    any
		operator string
		arg      any
		want     bool
	}{
		{7, "exact", int64(7), true},
		{uint8(7), "exact", 7, true},
		{7, "exact", 7.0, true},
		{"007", "exact", 7, false},
		{[]int{1}, "exact", []int{1}, true},
		{7, "ne", 8, true},
		{1.5, "gt", 1, true},
		{2, "lte", 2, true},
		{"b", "gt", "a", true},
		{"b", "gt", 1, false},
		{"Hello", "iexact", "HELLO", true},
		{"Hello", "contains", "ell", true},
		{"Hello", "icontains", "ELL", true},
		{"Hello", "startswith", "he", false},
		{"Hello", "istartswith", "he", true},
		{"Hello", "endswith", "lo", true},
		{"Hello", "iendswith", "LO", true},
		{nil, "isnull", true, true},
		{"", "isnull", true, true},
		{0, "isnull", true, false},
		{3, "in", []int{1, 2, 3}, true},
		{3, "in", []any{"3"}, false},
		{3, "unknown", 3, false},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v_%v_%v", test.value, test.operator, test.arg), func(t *testing.T) {
			assert.Equal(t, test.want, compareValue(test.value, test.operator, test.arg), "字段值比较的结果应当正确。")
		})
	}

	t.Run("Scan", func(t *testing.T) {
		n, ok := scanInt64([]byte("42"))
		assert.True(t, ok)
		assert.Equal(t, int64(42), n)
		n, ok = scanInt64("43")
		assert.True(t, ok)
		assert.Equal(t, int64(43), n)
		n, ok = scanInt64(uint32(44))
		assert.True(t, ok)
		assert.Equal(t, int64(44), n)
		_, ok = scanInt64("x")
		assert.False(t, ok, "非数字的字符串不应当转换成功。")
	})
}
