// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"

	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XTime"
)

// Count 获取满足条件的记录数量，分页信息不参与计数。
func Count[T IModel](env *Env, model T, cond ...*Condition) (int, error) {
	if err := env.check("XOrm.Count"); err != nil {
		return 0, err
	}
	meta := getModelMeta(model)
	if meta == nil {
		XLog.Critical("XOrm.Count: model of %v was not registered: %v", model.ModelUnique(), XLog.Caller(1, false))
		return 0, fmt.Errorf("XOrm.Count(%v): %w", model.ModelUnique(), ErrNotRegistered)
	}

	qs := env.tx.QueryTable(model)
	if len(cond) > 0 && cond[0] != nil && cond[0].Base != nil && !cond[0].Base.IsEmpty() {
		qs = qs.SetCond(cond[0].Base)
	}

	startTime := XTime.GetMicrosecond()
	count, err := qs.Count()
	env.record(opCount, model, startTime, err)
	if err != nil {
		XLog.Error("XOrm.Count(%v): query failed: %v", meta.table, err)
		return 0, fmt.Errorf("XOrm.Count(%v): %w", meta.table, err)
	}
	return int(count), nil
}
