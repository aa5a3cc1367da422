// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XPrefs"
	"github.com/stretchr/testify/assert"
)

func TestOrmInit(t *testing.T) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("xorm_init_%v.db", os.Getpid()))
	defer os.Remove(path)

	tests := []struct {
		name    string
		prefs   XPrefs.IBase
		aliases []string
		wantErr bool
	}{
		{
			name: "sqlite_test",
			prefs: XPrefs.New().Set("Orm/Source/SQLite/xorm_init", XPrefs.New().
				Set(prefsOrmAddr, path).
				Set(prefsOrmPool, 1).
				Set(prefsOrmConn, 1)),
			aliases: []string{"xorm_init"},
		},
		{
			name: "default_pool_test",
			prefs: XPrefs.New().Set("Orm/Source/SQLite/xorm_init_nopool", XPrefs.New().
				Set(prefsOrmAddr, path)),
			aliases: []string{"xorm_init_nopool"},
		},
		{
			name:  "ignored_key_test",
			prefs: XPrefs.New().Set("Orm/Other", "value").Set("Bench/Loops", "1,10"),
		},
		{
			name:  "invalid_value_test",
			prefs: XPrefs.New().Set("Orm/Source/SQLite/xorm_init_invalid", "file:invalid.db"),
		},
		{
			name: "duplicated_alias_test",
			prefs: XPrefs.New().Set("Orm/Source/SQLite/xorm_init", XPrefs.New().
				Set(prefsOrmAddr, path)),
			wantErr: true,
		},
		{
			name: "unreachable_mysql_test",
			prefs: XPrefs.New().Set("Orm/Source/MySQL/xorm_init_mysql", XPrefs.New().
				Set(prefsOrmAddr, "root:wrongpass@tcp(127.0.0.1:1)/mysql?charset=utf8mb4&timeout=1s")),
			wantErr: true,
		},
		{
			name:    "invalid_key_test",
			prefs:   XPrefs.New().Set("Orm/Source/SQLite", XPrefs.New().Set(prefsOrmAddr, path)),
			wantErr: true,
		},
		{
			name:    "nil_config_test",
			prefs:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				assert.Panics(t, func() { Init(tt.prefs) }, "错误的配置应当 panic。")
				return
			}

			assert.NotPanics(t, func() { Init(tt.prefs) }, "正确的配置不应当 panic。")
			for _, alias := range tt.aliases {
				db, err := orm.GetDB(alias)
				if assert.NoError(t, err, "注册的数据库 %v 应当可以获取。", alias) {
					assert.NoError(t, db.Ping(), "注册的数据库 %v 应当可以连接。", alias)
				}
			}
		})
	}

	_, err := orm.GetDB("xorm_init_invalid")
	assert.Error(t, err, "非法的配置值不应当注册数据库。")
}
