// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"testing"

	"github.com/eframework-org/GO.UTIL/XObject"
	"github.com/stretchr/testify/assert"
)

type TestModelMetaEmbed struct {
	CreatedAt int64 `orm:"column(created_at)"`
}

type TestModelMetaInfo struct {
	Model[TestModelMetaInfo] `orm:"-" json:"-"`
	TestModelMetaEmbed
	Uid      int    `orm:"column(uid);pk"`
	UserName string `orm:"size(100)"`
	Ignored  string `orm:"-"`
	private  string
}

func (m *TestModelMetaInfo) AliasName() string { return "myalias" }

func (m *TestModelMetaInfo) TableName() string { return "mytable" }

type TestModelMetaNoPK struct {
	Model[TestModelMetaNoPK] `orm:"-" json:"-"`
	Name                     string `orm:"column(name)"`
}

func (m *TestModelMetaNoPK) AliasName() string { return "myalias" }

func (m *TestModelMetaNoPK) TableName() string { return "nopk" }

type TestModelMetaImplicit struct {
	Model[TestModelMetaImplicit] `orm:"-" json:"-"`
	Id                           int
	Name                         string
}

func (m *TestModelMetaImplicit) AliasName() string { return "myalias" }

func (m *TestModelMetaImplicit) TableName() string { return "implicit" }

func TestModelMeta(t *testing.T) {
	t.Run("Parse", func(t *testing.T) {
		model := XObject.New[TestModelMetaInfo]()
		meta := parseModelMeta(model)
		assert.Equal(t, "myalias_mytable", meta.unique, "模型标识应当由别名和表名组成。")
		assert.Equal(t, "mytable", meta.table)
		assert.NotNil(t, meta.pk, "主键字段应当被识别。")
		assert.Equal(t, "Uid", meta.pk.name)
		assert.Equal(t, "uid", meta.pk.column)

		var names []string
		for _, f := range meta.fields {
			names = append(names, f.name)
		}
		assert.Equal(t, []string{"CreatedAt", "Uid", "UserName"}, names, "忽略字段和未导出字段不应当被解析。")
		assert.Equal(t, "user_name", meta.lookup("UserName").column, "未指定列名时应当使用下划线命名。")
		assert.Same(t, meta.lookup("created_at"), meta.lookup("CreatedAt"), "按列名和字段名查找应当返回同一字段。")
		assert.Nil(t, meta.lookup("Ignored"))
		assert.Nil(t, meta.lookup("private"))
	})

	t.Run("Implicit", func(t *testing.T) {
		meta := parseModelMeta(XObject.New[TestModelMetaImplicit]())
		assert.NotNil(t, meta.pk, "名为 Id 的字段应当被视为主键。")
		assert.Equal(t, "Id", meta.pk.name)
		assert.True(t, meta.pk.pk)
	})

	t.Run("Snake", func(t *testing.T) {
		tests := map[string]string{
			"Name":       "name",
			"BenchStr":   "bench_str",
			"HTTPServer": "http_server",
			"UserID":     "user_id",
			"already_ok": "already_ok",
		}
		for in, want := range tests {
			assert.Equal(t, want, snakeString(in), "%v 的下划线命名应当正确。", in)
		}
	})

	t.Run("Register", func(t *testing.T) {
		setupTest(t)

		assert.NotNil(t, getModelMeta(NewTestPartner()), "已注册的模型描述信息不应为空。")
		assert.Nil(t, getModelMeta(XObject.New[TestModelMetaInfo]()), "未注册的模型描述信息应当为空。")
		assert.Nil(t, getModelMeta(nil))

		assert.Panics(t, func() { Meta(nil) }, "注册空模型时应当 panic。")
		assert.Panics(t, func() { Meta(NewTestPartner()) }, "重复注册相同模型时应当 panic。")
		assert.Panics(t, func() { Meta(XObject.New[TestModelMetaNoPK]()) }, "注册缺少主键的模型时应当 panic。")
		assert.Nil(t, getModelMeta(XObject.New[TestModelMetaNoPK]()), "注册失败的模型不应当被保存。")
	})
}
