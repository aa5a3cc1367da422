// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// Unlink 删除记录集中的所有记录并移出环境缓存。
func (rs *Recordset[T]) Unlink() error {
	if err := rs.env.check("XOrm.Recordset.Unlink"); err != nil {
		return err
	}
	if len(rs.ids) == 0 {
		return nil
	}

	startTime := XTime.GetMicrosecond()
	var err error
	for _, chunk := range chunkIds(rs.ids) {
		if _, err = rs.env.tx.QueryTable(rs.model).Filter(rs.meta.pk.column+"__in", chunk).Delete(); err != nil {
			break
		}
	}
	rs.env.record(opUnlink, rs.model, startTime, err)
	rs.env.evictCache(rs.model, rs.ids)
	if err != nil {
		XLog.Error("XOrm.Recordset(%v).Unlink: delete %v records failed: %v", rs.meta.table, len(rs.ids), err)
		return fmt.Errorf("XOrm.Recordset(%v).Unlink: %w", rs.meta.table, err)
	}
	return nil
}
