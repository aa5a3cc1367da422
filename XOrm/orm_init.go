// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"strings"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XPrefs"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	prefsOrmSource = "Orm/Source/"
	prefsOrmAddr   = "Addr"
	prefsOrmPool   = "Pool"
	prefsOrmConn   = "Conn"
)

func init() {
	// modernc.org/sqlite 以 sqlite 为驱动名注册，beego 默认只识别 sqlite3
	if err := orm.RegisterDriver("sqlite", orm.DRSqlite); err != nil {
		XLog.Panic("XOrm.init: register sqlite driver failed: %v", err)
	}
	initOrm(XPrefs.Asset())
}

// Init 根据首选项注册数据库，键名格式为 Orm/Source/<数据库类型>/<数据库别名>。
// 已注册的别名再次注册将触发 panic。
func Init(prefs XPrefs.IBase) { initOrm(prefs) }

func initOrm(prefs XPrefs.IBase) {
	if prefs == nil {
		XLog.Panic("XOrm.Init: prefs is nil.")
		return
	}

	for _, key := range prefs.Keys() {
		if !strings.HasPrefix(key, prefsOrmSource) {
			continue
		}
		parts := strings.Split(key, "/")
		if len(parts) != 4 || parts[2] == "" || parts[3] == "" {
			XLog.Panic("XOrm.Init: invalid prefs key %v.", key)
			return
		}

		ormType := strings.ToLower(parts[2])
		ormAlias := parts[3]

		base, ok := prefs.Get(key).(XPrefs.IBase)
		if !ok || base == nil {
			XLog.Error("XOrm.Init: invalid config for %v", key)
			continue
		}

		ormAddr := base.GetString(prefsOrmAddr)
		var params []orm.DBOption
		if ormPool := base.GetInt(prefsOrmPool); ormPool > 0 {
			params = append(params, orm.MaxIdleConnections(ormPool))
		}
		if ormConn := base.GetInt(prefsOrmConn); ormConn > 0 {
			params = append(params, orm.MaxOpenConnections(ormConn))
		}
		if err := orm.RegisterDataBase(ormAlias, ormType, ormAddr, params...); err != nil {
			XLog.Panic("XOrm.Init: register database %v failed, err: %v", ormAlias, err)
			return
		}
		XLog.Notice("XOrm.Init: database %v of %v has been registered.", ormAlias, ormType)
	}
}
