// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
	"github.com/eframework-org/GO.UTIL/XString"
	"github.com/eframework-org/GO.UTIL/XTime"
	"github.com/petermattis/goid"
)

var (
	// ErrEnvClosed 表示环境已经提交或回滚。
	ErrEnvClosed = errors.New("XOrm: env has been closed")

	// ErrNotRegistered 表示模型未通过 Meta 注册。
	ErrNotRegistered = errors.New("XOrm: model was not registered")

	// ErrNotSingleton 表示记录集不是单条记录。
	ErrNotSingleton = errors.New("XOrm: expected singleton")
)

// envID 是环境 ID 的原子计数器，用于生成唯一的环境标识。
var envID int64

// 环境内统计的操作类型。
const (
	opSearch = iota
	opPrefetch
	opWrite
	opCreate
	opCount
	opUnlink
	opMax
)

var opNames = [opMax]string{"Search", "Prefetch", "Write", "Create", "Count", "Unlink"}

// opStat 记录同一类操作的次数和耗时（微秒）。
type opStat struct {
	count   int64
	elapsed int64
}

// Env 定义了绑定到单个数据库事务的操作环境。
// 环境持有记录缓存，记录集的读取优先从缓存中获取，未命中时按批次回源。
// 环境不是并发安全的，只应在开启它的 goroutine 中使用。
type Env struct {
	id     int         // 环境标识
	gid    int64       // 开启环境的 goroutine ID
	alias  string      // 数据库别名
	tx     orm.TxOrmer // 事务实例
	time   int         // 开启时间（微秒）
	cache  sync.Map    // 记录缓存，键为模型标识，值为 *XCollect.Map
	closed bool        // 是否已提交或回滚
	stats  [opMax]opStat
}

// Begin 在指定的数据库别名上开启一个事务环境。
// 函数会生成新的环境 ID，并在日志标签中记录 goroutine ID 和环境 ID。
//
// 使用示例：
//
//	env, err := XOrm.Begin("default")
//	if err != nil {
//	    return err
//	}
//	defer env.Rollback()
func Begin(alias string) (*Env, error) {
	if _, err := orm.GetDB(alias); err != nil {
		XLog.Error("XOrm.Begin: database of %v was not registered: %v", alias, err)
		return nil, fmt.Errorf("XOrm.Begin: %w", err)
	}
	orm.BootStrap() // 首次开启环境时完成模型初始化

	tx, err := orm.NewOrmUsingDB(alias).Begin()
	if err != nil {
		XLog.Error("XOrm.Begin: begin transaction on %v failed: %v", alias, err)
		return nil, fmt.Errorf("XOrm.Begin: %w", err)
	}

	env := &Env{
		id:    int(atomic.AddInt64(&envID, 1)),
		gid:   goid.Get(),
		alias: alias,
		tx:    tx,
		time:  XTime.GetMicrosecond(),
	}

	tag := XLog.Tag()
	if tag != nil { // 设置日志标签
		tag.Set("Go", XString.ToString(int(env.gid)))
		tag.Set("Env", XString.ToString(env.id))
	}

	XLog.Info("XOrm.Begin: env-%v has been started on %v.", env.id, alias)
	return env, nil
}

// ID 返回环境标识。
func (env *Env) ID() int { return env.id }

// Alias 返回环境所在的数据库别名。
func (env *Env) Alias() string { return env.alias }

// Closed 返回环境是否已提交或回滚。
func (env *Env) Closed() bool { return env.closed }

// Commit 提交事务并关闭环境。
func (env *Env) Commit() error {
	return env.finish("Commit")
}

// Rollback 回滚事务并关闭环境，对已关闭的环境调用将返回 ErrEnvClosed。
func (env *Env) Rollback() error {
	return env.finish("Rollback")
}

func (env *Env) finish(action string) error {
	if env.closed {
		return ErrEnvClosed
	}
	env.closed = true
	env.cache.Clear()

	startTime := XTime.GetMicrosecond()
	var err error
	if action == "Commit" {
		err = env.tx.Commit()
	} else {
		err = env.tx.Rollback()
	}
	selfCost := XTime.GetMicrosecond() - startTime

	if err != nil {
		XLog.Error("XOrm.%v: env-%v failed: %v", action, env.id, err)
		return fmt.Errorf("XOrm.%v: %w", action, err)
	}

	if XLog.Able(XLog.LevelInfo) {
		otherCost := int64(XTime.GetMicrosecond() - env.time - selfCost)
		var opLog strings.Builder
		for i := range env.stats {
			stat := env.stats[i]
			if stat.count > 0 {
				opLog.WriteString(fmt.Sprintf("[%v(%v):%.2fms] ", opNames[i], stat.count, float64(stat.elapsed)/1e3))
				otherCost -= stat.elapsed
			}
		}
		XLog.Info("XOrm.%v: env-%v has been closed, elapsed %.2fms for %v[Self:%.2fms] [Other:%.2fms].",
			action,
			env.id,
			float64(XTime.GetMicrosecond()-env.time)/1e3,
			opLog.String(),
			float64(selfCost)/1e3,
			float64(otherCost)/1e3)
	}
	return nil
}

// check 校验环境的状态，跨 goroutine 使用仅记录错误日志。
func (env *Env) check(source string) error {
	if env == nil {
		XLog.Critical("%v: env is nil: %v", source, XLog.Caller(2, false))
		return ErrEnvClosed
	}
	if env.closed {
		XLog.Critical("%v: env-%v has been closed: %v", source, env.id, XLog.Caller(2, false))
		return ErrEnvClosed
	}
	if gid := goid.Get(); gid != env.gid {
		XLog.Critical("%v: env-%v is used by goroutine %v but was started by %v: %v", source, env.id, gid, env.gid, XLog.Caller(2, false))
	}
	return nil
}

// record 累计操作的次数和耗时，并上报指标。
func (env *Env) record(op int, model IModel, startTime int, err error) {
	elapsed := int64(XTime.GetMicrosecond() - startTime)
	env.stats[op].count++
	env.stats[op].elapsed += elapsed
	sharedMetrics.observe(opNames[op], model.ModelUnique(), float64(elapsed)/1e6, err)
}

// Sandbox 在独立的事务环境中执行 fn，无论成功与否都会回滚，适用于测试用例的隔离。
// fn 中的 panic 会在回滚后继续传播。
func Sandbox(alias string, fn func(env *Env) error) (err error) {
	env, err := Begin(alias)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := env.Rollback(); rerr != nil && err == nil && !errors.Is(rerr, ErrEnvClosed) {
			err = rerr
		}
	}()
	return fn(env)
}
