// Copyright (c) 2025 EFramework Organization. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package XOrm

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/beego/beego/v2/client/orm"
	"github.com/eframework-org/GO.UTIL/XLog"
)

// Condition 表示一个查询条件，包含基础条件、分页信息和用于内存匹配的表达式树。
type Condition struct {
	Base   *orm.Condition // 基础条件
	Limit  int            // 分页限制
	Offset int            // 分页偏移

	root *condNode // 表达式树，从已有的 orm.Condition 创建时为空
	args []any     // 表达式参数
}

// Cond 创建新的条件。
//
// 用法:
//  1. Cond() - 创建空条件
//  2. Cond(existingCond *orm.Condition) - 从现有条件创建（不支持内存匹配）
//  3. Cond("a > {0} && b == {1}", 1, 2) - 从表达式和参数创建
//
// 支持的操作符：>、>=、<、<=、==、!=、iexact、contains、icontains、startswith、
// istartswith、endswith、iendswith、isnull、in，逻辑运算 &&、||、! 及括号，
// 分页参数 limit = {n}、offset = {n}。
//
// 表达式语法错误、参数数量不一致或占位符下标越界时将触发 panic。
func Cond(condOrExprAndArgs ...any) *Condition {
	c := &Condition{Base: orm.NewCondition()}
	if len(condOrExprAndArgs) == 0 {
		return c
	}

	switch first := condOrExprAndArgs[0].(type) {
	case *orm.Condition:
		if first != nil {
			c.Base = first
		}
		return c
	case string:
		if strings.TrimSpace(first) == "" {
			return c
		}
		info := exprParserCache.get(first)
		args := condOrExprAndArgs[1:]
		if info.params != len(args) {
			XLog.Panic("XOrm.Cond('%v'): args count %v doesn't comply with format count %v.", first, len(args), info.params)
		}
		c.root = info.root
		c.args = args
		if info.limit >= 0 {
			c.Limit = toIntArg(first, "limit", paramOf(args, info.limit))
		}
		if info.offset >= 0 {
			c.Offset = toIntArg(first, "offset", paramOf(args, info.offset))
		}
		if c.root != nil {
			c.Base = c.root.build(args)
		}
		return c
	}

	XLog.Panic("XOrm.Cond: invalid arguments type: %T", condOrExprAndArgs[0])
	return nil
}

// Matchable 返回条件是否支持内存匹配。
func (c *Condition) Matchable() bool {
	return c == nil || c.root != nil || c.Base == nil || c.Base.IsEmpty()
}

// String 返回条件的文本描述。
func (c *Condition) String() string {
	if c == nil || c.root == nil {
		return "<raw>"
	}
	return c.root.format(c.args)
}

// match 判断模型是否满足条件，分页信息不参与匹配。
func (c *Condition) match(model IModel, meta *modelMeta) bool {
	if c == nil || c.root == nil {
		return true
	}
	return c.root.eval(model, meta, c.args)
}

// operatorMap 定义了表达式操作符与 beego 查询后缀的映射。
var operatorMap = map[string]string{
	">":           "gt",
	">=":          "gte",
	"<":           "lt",
	"<=":          "lte",
	"==":          "exact",
	"!=":          "ne",
	"iexact":      "iexact",
	"contains":    "contains",
	"icontains":   "icontains",
	"startswith":  "startswith",
	"istartswith": "istartswith",
	"endswith":    "endswith",
	"iendswith":   "iendswith",
	"isnull":      "isnull",
	"in":          "in",
}

const (
	nodeLeaf = iota
	nodeAnd
	nodeOr
	nodeNot
)

// condNode 是表达式树的节点。
type condNode struct {
	kind     int
	field    string
	operator string
	param    int
	children []*condNode
}

// exprInfo 缓存已解析的表达式结构。
type exprInfo struct {
	root   *condNode
	params int // 占位符数量
	limit  int // limit 参数索引，-1 表示未指定
	offset int // offset 参数索引，-1 表示未指定
}

// exprParser 是表达式解析缓存，相同的表达式只会解析一次。
type exprParser struct {
	sync.Map
}

var exprParserCache = &exprParser{}

func (ep *exprParser) get(expr string) *exprInfo {
	if cached, ok := ep.Load(expr); ok {
		return cached.(*exprInfo)
	}
	info, err := parseExpr(expr)
	if err != nil {
		XLog.Panic("XOrm.Cond('%v'): %v", expr, err)
	}
	ep.Store(expr, info)
	return info
}

// tokenize 将表达式拆分为标记。
func tokenize(expr string) ([]string, error) {
	var tokens []string
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		ch := rs[i]
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '(' || ch == ')':
			tokens = append(tokens, string(ch))
			i++
		case ch == '&' || ch == '|':
			if i+1 >= len(rs) || rs[i+1] != ch {
				return nil, fmt.Errorf("unexpected character %q at %v", ch, i)
			}
			tokens = append(tokens, string([]rune{ch, ch}))
			i += 2
		case ch == '!' || ch == '=' || ch == '<' || ch == '>':
			if i+1 < len(rs) && rs[i+1] == '=' {
				tokens = append(tokens, string([]rune{ch, '='}))
				i += 2
			} else {
				tokens = append(tokens, string(ch))
				i++
			}
		case ch == '{':
			j := i + 1
			for j < len(rs) && rs[j] != '}' {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("unclosed placeholder at %v", i)
			}
			tokens = append(tokens, string(rs[i:j+1]))
			i = j + 1
		case ch == '_' || ch == '.' || unicode.IsLetter(ch) || unicode.IsDigit(ch):
			j := i
			for j < len(rs) && (rs[j] == '_' || rs[j] == '.' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			tokens = append(tokens, string(rs[i:j]))
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at %v", ch, i)
		}
	}
	return tokens, nil
}

// exprState 是递归下降解析的状态。
type exprState struct {
	tokens []string
	pos    int
	info   *exprInfo
}

func parseExpr(expr string) (*exprInfo, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	st := &exprState{tokens: tokens, info: &exprInfo{limit: -1, offset: -1}}
	root, err := st.parseOr()
	if err != nil {
		return nil, err
	}
	if st.pos < len(st.tokens) {
		return nil, fmt.Errorf("unexpected token: %v", st.tokens[st.pos])
	}
	st.info.root = root
	return st.info, nil
}

func (st *exprState) peek() string {
	if st.pos < len(st.tokens) {
		return st.tokens[st.pos]
	}
	return ""
}

func (st *exprState) next() string {
	tok := st.peek()
	if tok != "" {
		st.pos++
	}
	return tok
}

func (st *exprState) parseOr() (*condNode, error) {
	return st.parseBinary("||", nodeOr, st.parseAnd)
}

func (st *exprState) parseAnd() (*condNode, error) {
	return st.parseBinary("&&", nodeAnd, st.parseUnary)
}

// parseBinary 解析由同一逻辑操作符连接的子表达式，分页标记会被忽略。
func (st *exprState) parseBinary(op string, kind int, sub func() (*condNode, error)) (*condNode, error) {
	var children []*condNode
	for {
		node, err := sub()
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
		}
		if st.peek() != op {
			break
		}
		st.next()
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	default:
		return &condNode{kind: kind, children: children}, nil
	}
}

func (st *exprState) parseUnary() (*condNode, error) {
	switch st.peek() {
	case "":
		return nil, fmt.Errorf("unexpected end of expression")
	case "!":
		st.next()
		node, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, fmt.Errorf("nothing to negate")
		}
		return &condNode{kind: nodeNot, children: []*condNode{node}}, nil
	case "(":
		st.next()
		node, err := st.parseOr()
		if err != nil {
			return nil, err
		}
		if st.next() != ")" {
			return nil, fmt.Errorf("missing right bracket")
		}
		return node, nil
	}
	return st.parseCompare()
}

func (st *exprState) parseCompare() (*condNode, error) {
	field := st.next()
	if _, isOp := operatorMap[field]; isOp || !isIdent(field) {
		return nil, fmt.Errorf("unidentified field: %v", field)
	}
	opTok := st.next()
	if field == "limit" || field == "offset" {
		if opTok != "=" {
			return nil, fmt.Errorf("%v requires '=' but got %v", field, opTok)
		}
		param, err := st.parsePlaceholder()
		if err != nil {
			return nil, err
		}
		if field == "limit" {
			st.info.limit = param
		} else {
			st.info.offset = param
		}
		return nil, nil
	}
	op, ok := operatorMap[opTok]
	if !ok {
		return nil, fmt.Errorf("unidentified operator: %v", opTok)
	}
	param, err := st.parsePlaceholder()
	if err != nil {
		return nil, err
	}
	return &condNode{kind: nodeLeaf, field: field, operator: op, param: param}, nil
}

func (st *exprState) parsePlaceholder() (int, error) {
	tok := st.next()
	if !strings.HasPrefix(tok, "{") || !strings.HasSuffix(tok, "}") {
		return 0, fmt.Errorf("expect placeholder but got %v", tok)
	}
	idx, err := strconv.Atoi(tok[1 : len(tok)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid syntax: %v is not a valid parameter index", tok)
	}
	if idx < 0 {
		return 0, fmt.Errorf("negative index: parameter index cannot be negative (%d)", idx)
	}
	st.info.params++
	return idx, nil
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	r := []rune(tok)[0]
	return r == '_' || unicode.IsLetter(r)
}

// build 根据参数构建 beego 的查询条件。
func (n *condNode) build(args []any) *orm.Condition {
	cond := orm.NewCondition()
	switch n.kind {
	case nodeAnd, nodeOr:
		for _, child := range n.children {
			cond = appendNode(cond, child, args, n.kind == nodeOr)
		}
	default:
		cond = appendNode(cond, n, args, false)
	}
	return cond
}

// appendNode 将子节点以 AND/OR 的方式附加到条件中，NOT 节点会被折叠。
func appendNode(cond *orm.Condition, n *condNode, args []any, isOr bool) *orm.Condition {
	isNot := false
	for n.kind == nodeNot {
		isNot = !isNot
		n = n.children[0]
	}
	if n.kind == nodeLeaf {
		operator := n.operator
		if operator == "ne" { // beego 不支持 ne，使用 NOT exact 代替
			operator = "exact"
			isNot = !isNot
		}
		key := n.field + "__" + operator
		value := paramOf(args, n.param)
		switch {
		case isOr && isNot:
			return cond.OrNot(key, value)
		case isOr:
			return cond.Or(key, value)
		case isNot:
			return cond.AndNot(key, value)
		default:
			return cond.And(key, value)
		}
	}
	sub := n.build(args)
	switch {
	case isOr && isNot:
		return cond.OrNotCond(sub)
	case isOr:
		return cond.OrCond(sub)
	case isNot:
		return cond.AndNotCond(sub)
	default:
		return cond.AndCond(sub)
	}
}

// eval 在内存中对模型求值。
func (n *condNode) eval(model IModel, meta *modelMeta, args []any) bool {
	switch n.kind {
	case nodeAnd:
		for _, child := range n.children {
			if !child.eval(model, meta, args) {
				return false
			}
		}
		return true
	case nodeOr:
		for _, child := range n.children {
			if child.eval(model, meta, args) {
				return true
			}
		}
		return false
	case nodeNot:
		return !n.children[0].eval(model, meta, args)
	}

	fmeta := meta.lookup(n.field)
	if fmeta == nil {
		XLog.Error("XOrm.Cond: field %v wasn't found in model %v.", n.field, meta.unique)
		return false
	}
	return compareValue(model.DataValue(fmeta.name), n.operator, paramOf(args, n.param))
}

func (n *condNode) format(args []any) string {
	switch n.kind {
	case nodeAnd, nodeOr:
		sep := " && "
		if n.kind == nodeOr {
			sep = " || "
		}
		parts := make([]string, 0, len(n.children))
		for _, child := range n.children {
			parts = append(parts, child.format(args))
		}
		return "(" + strings.Join(parts, sep) + ")"
	case nodeNot:
		return "!" + n.children[0].format(args)
	}
	return fmt.Sprintf("%v__%v(%v)", n.field, n.operator, paramOf(args, n.param))
}

func paramOf(args []any, idx int) any {
	if idx >= len(args) {
		XLog.Panic("XOrm.Cond: index out of range: parameter index %d exceeds argument count %d", idx, len(args))
	}
	return args[idx]
}

func toIntArg(expr, name string, v any) int {
	if n, ok := toInt64(v); ok {
		return int(n)
	}
	XLog.Panic("XOrm.Cond('%v'): %v must be an integer but got %T.", expr, name, v)
	return 0
}
