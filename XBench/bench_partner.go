// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XBench

import (
	"fmt"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.BENCH/XOrm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XObject"
)

// PartnerAlias 是伙伴模型所在的数据库别名。
const PartnerAlias = "default"

// Partner 是基准测试使用的伙伴模型，BenchStr 为基准测试专用的扩展字段。
type Partner struct {
	XOrm.Model[Partner] `orm:"-" json:"-"`
	ID                  int    `orm:"column(id);pk;auto"`
	Name                string `orm:"column(name);size(128)"`
	BenchStr            string `orm:"column(bench_str);size(64)"`
}

func (p *Partner) AliasName() string { return PartnerAlias }

func (p *Partner) TableName() string { return "res_partner" }

// NewPartner 创建伙伴模型实例。
func NewPartner() *Partner { return XObject.New[Partner]() }

func init() { XOrm.Meta(NewPartner()) }

// Install 在数据库中创建伙伴表，已存在的表不会被修改。
func Install(alias string) error {
	if err := orm.RunSyncdb(alias, false, false); err != nil {
		XLog.Error("XBench.Install: sync database %v failed: %v", alias, err)
		return fmt.Errorf("XBench.Install(%v): %w", alias, err)
	}
	return nil
}

var partnerNames = []string{
	"Azure Interior",
	"Deco Addict",
	"Gemini Furniture",
	"Ready Mat",
	"The Jackson Group",
	"Wood Corner",
	"Lumber Inc",
	"acme corp",
	"Agrolait",
	"Camptocamp",
}

// Seed 在环境中创建 count 个伙伴记录，名称按固定列表循环，约三成以 a 或 A 开头。
func Seed(env *XOrm.Env, count int) (*XOrm.Recordset[*Partner], error) {
	if count <= 0 {
		return XOrm.Browse(env, NewPartner())
	}
	partners := make([]*Partner, 0, count)
	for i := range count {
		partner := NewPartner()
		partner.Name = fmt.Sprintf("%v %d", partnerNames[i%len(partnerNames)], i)
		partners = append(partners, partner)
	}
	return XOrm.Create(env, partners...)
}
