// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
XOrm 基于 Beego 的 ORM 提供了记录集（Recordset）形式的数据访问，所有操作都在绑定单个事务的环境（Env）中进行。

功能特性

  - 多源配置：通过解析首选项中的配置自动注册数据库
  - 数据模型：提供了面向对象的模型设计、字段索引及条件匹配
  - 事务环境：每个环境持有独立的事务和记录缓存，回滚后不留痕迹
  - 记录集：检索只返回主键，读取时按批次预取，支持批量写入、合并及过滤

使用手册

1. 多源配置

配置说明：
  - 配置键名：Orm/Source/<数据库类型>/<数据库别名>
  - 支持 MySQL 和 SQLite（驱动分别为 go-sql-driver/mysql 与 modernc.org/sqlite）
  - 配置参数：
  - Addr：数据源地址
  - Pool：空闲连接数，未配置时使用驱动默认值
  - Conn：最大连接数，未配置时不限制

配置示例：

	{
	    "Orm/Source/MySQL/default": {
	        "Addr": "root:123456@tcp(127.0.0.1:3306)/bench?charset=utf8mb4&loc=Local",
	        "Pool": 1,
	        "Conn": 1
	    },
	    "Orm/Source/SQLite/local": {
	        "Addr": "file:bench.db",
	        "Pool": 1,
	        "Conn": 1
	    }
	}

Beego 要求存在名为 default 的数据库别名。

2. 数据模型

2.1 模型定义

	type Partner struct {
	    XOrm.Model[Partner] `orm:"-" json:"-"`
	    ID                  int    `orm:"column(id);pk;auto"`
	    Name                string `orm:"column(name);size(128)"`
	}

	func (p *Partner) AliasName() string { return "default" }

	func (p *Partner) TableName() string { return "res_partner" }

	func NewPartner() *Partner { return XObject.New[Partner]() }

	func init() { XOrm.Meta(NewPartner()) }

模型须通过 XObject.New 创建以完成构造初始化，并在首次开启环境之前通过 Meta 注册。

2.2 条件查询

	cond := XOrm.Cond("age > {0} && name == {1}", 18, "test")
	cond := XOrm.Cond("(age >= {0} && age <= {1}) || name istartswith {2}", 18, 30, "a")
	cond := XOrm.Cond("!(age >= {0}) && limit = {1} && offset = {2}", 30, 10, 20)

支持的操作符：> >= < <= == != iexact contains icontains startswith istartswith endswith iendswith isnull in。
由表达式创建的条件既可以转换为 SQL，也可以在内存中匹配；由 orm.Condition 创建的条件只能转换为 SQL。

3. 事务环境

	env, err := XOrm.Begin("default")
	if err != nil {
	    return err
	}
	defer env.Rollback()

	records, _ := XOrm.Search(env, NewPartner())
	_ = records.Write(orm.Params{"name": "test"})
	return env.Commit()

测试用例可使用 Sandbox，函数返回后环境总是回滚：

	XOrm.Sandbox("default", func(env *XOrm.Env) error {
	    ...
	})

环境只应在开启它的 goroutine 中使用，跨 goroutine 使用会记录 Critical 日志。

4. 记录集

	records, _ := XOrm.Search(env, NewPartner(), XOrm.Cond("name istartswith {0}", "a"))
	for rec := range records.Each() {
	    partner, _ := rec.Record() // 首次读取时预取 records 中所有未缓存的记录
	}
	names, _ := XOrm.Mapped(records, func(p *Partner) string { return p.Name })
	subset, _ := records.Filtered(func(p *Partner) bool { return p.ID%2 == 0 })
	merged := records.Union(subset)

预取按每批最多 1000 个主键执行，一批一次查询。
*/
package XOrm
