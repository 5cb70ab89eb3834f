// Package repo 提供按规约驱动的仓储执行器。
//
// 同一棵规约树经同一条路径转成谓词后服务查找、计数、存在性、
// 更新、删除五类操作，不同操作之间不会出现谓词语义漂移。
package repo

import (
	"context"
	"sort"
	"strings"

	"querykit/criteria"
	"querykit/errors"
	"querykit/logging"
	"querykit/query"
	"querykit/session"
	"querykit/sqlgen"
)

// RowMapper 把结果集当前行映射为实体。
type RowMapper[T any] func(rows session.IRows) (T, error)

// KeyExtractor 提取实体在各可排序属性上的值快照，键集续扫使用。
type KeyExtractor[T any] func(entity T) map[string]any

// ExecutorConfig 执行器装配参数。
type ExecutorConfig[T any] struct {
	// Session 数据库会话
	Session session.ISession

	// Entity 实体元数据
	Entity *criteria.EntityInfo

	// Mapper 行映射器
	Mapper RowMapper[T]

	// Keys 键集续扫的值快照提取器；不用 Scroll 时可为 nil
	Keys KeyExtractor[T]

	// Logger 为 nil 时不输出日志
	Logger logging.Logger
}

// Executor 规约驱动的仓储执行器。装配完成后只读，可并发使用。
type Executor[T any] struct {
	session session.ISession
	entity  *criteria.EntityInfo
	mapper  RowMapper[T]
	keys    KeyExtractor[T]
	logger  logging.Logger
	escape  criteria.EscapeCharacter
}

// NewExecutor 创建执行器。缺失会话、实体或映射器属配置错误。
func NewExecutor[T any](cfg ExecutorConfig[T]) (*Executor[T], error) {
	if cfg.Session == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "executor requires a session")
	}
	if cfg.Entity == nil || cfg.Entity.Table == "" {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "executor requires entity metadata with a table name")
	}
	if cfg.Mapper == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "executor requires a row mapper")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Executor[T]{
		session: cfg.Session,
		entity:  cfg.Entity,
		mapper:  cfg.Mapper,
		keys:    cfg.Keys,
		logger:  logger,
		escape:  criteria.DefaultEscapeCharacter,
	}, nil
}

// Entity 返回实体元数据。
func (e *Executor[T]) Entity() *criteria.EntityInfo { return e.entity }

// Escape 返回 LIKE 通配符转义器。
func (e *Executor[T]) Escape() criteria.EscapeCharacter { return e.escape }

// SetEscape 覆盖 LIKE 通配符转义器。仅限装配阶段调用，
// 执行器投入使用后不再改动。
func (e *Executor[T]) SetEscape(escape criteria.EscapeCharacter) { e.escape = escape }

// applySpecification 把规约求值为谓词与查询形状。
// 所有操作共用的唯一入口。nil 规约属用法错误——不加约束
// 必须显式传 criteria.Unrestricted()，不存在隐式全表语义。
func (e *Executor[T]) applySpecification(spec criteria.ISpecification) (*criteria.Predicate, *criteria.QueryContext, error) {
	if spec == nil {
		return nil, nil, errors.NewError(errors.ErrCodeInvalidInput,
			"specification must not be nil; use criteria.Unrestricted() for no constraint")
	}
	root := criteria.NewRoot(e.entity)
	qc := &criteria.QueryContext{}
	p, err := spec.ToPredicate(root, qc, criteria.Builder{})
	if err != nil {
		return nil, nil, err
	}
	return p, qc, nil
}

// validateSort 排序属性必须是实体的可引用属性。
func (e *Executor[T]) validateSort(s query.Sort) error {
	root := criteria.NewRoot(e.entity)
	for _, order := range s {
		if _, err := root.Get(order.Property); err != nil {
			return err
		}
	}
	return nil
}

// selectFor 组装查找语句：谓词 + 形状 + 排序。
func (e *Executor[T]) selectFor(spec criteria.ISpecification, s query.Sort) (*sqlgen.SelectBuilder, error) {
	p, qc, err := e.applySpecification(spec)
	if err != nil {
		return nil, err
	}
	if err := e.validateSort(s); err != nil {
		return nil, err
	}

	b := sqlgen.NewSelect().From(e.entity.Table).Distinct(qc.IsDistinct())
	if selection := qc.Selection(); len(selection) > 0 {
		b.Columns(selection...)
	}
	if p != nil {
		b.Where(p.SQL, p.Args...)
	}
	return b.OrderBy(s), nil
}

// GetQuery 产出查找语句而不执行。
func (e *Executor[T]) GetQuery(spec criteria.ISpecification, s query.Sort) (string, []any, error) {
	b, err := e.selectFor(spec, s)
	if err != nil {
		return "", nil, err
	}
	sql, args := b.Build()
	return sql, args, nil
}

// GetCountQuery 产出计数语句而不执行。排序与上限不参与计数；
// 查询形状标记了去重时按有效选择列做去重计数，与数据查询的
// 行集保持一致。
func (e *Executor[T]) GetCountQuery(spec criteria.ISpecification) (string, []any, error) {
	p, qc, err := e.applySpecification(spec)
	if err != nil {
		return "", nil, err
	}

	b := sqlgen.NewSelect().From(e.entity.Table)
	if qc.IsDistinct() {
		target, err := e.distinctCountTarget(qc)
		if err != nil {
			return "", nil, err
		}
		b.Expr("count(distinct " + target + ")")
	} else {
		b.Expr("count(*)")
	}
	if p != nil {
		b.Where(p.SQL, p.Args...)
	}
	sql, args := b.Build()
	return sql, args, nil
}

// distinctCountTarget 去重计数的目标列：有效选择列，整实体选择
// 回退到标识属性（整实体行按标识去重）。
func (e *Executor[T]) distinctCountTarget(qc *criteria.QueryContext) (string, error) {
	root := criteria.NewRoot(e.entity)
	selection := qc.Selection()
	if len(selection) == 0 {
		return root.ID()
	}

	refs := make([]string, 0, len(selection))
	for _, column := range selection {
		ref, err := root.Get(column)
		if err != nil {
			return "", err
		}
		refs = append(refs, ref)
	}
	return strings.Join(refs, ", "), nil
}

// GetUpdate 产出更新语句而不执行。
// 赋值列按名排序后拼装，语句文本稳定可测。
func (e *Executor[T]) GetUpdate(spec criteria.ISpecification, sets map[string]any) (string, []any, error) {
	if len(sets) == 0 {
		return "", nil, errors.NewError(errors.ErrCodeInvalidInput, "update requires at least one assignment")
	}

	p, _, err := e.applySpecification(spec)
	if err != nil {
		return "", nil, err
	}

	root := criteria.NewRoot(e.entity)
	columns := make([]string, 0, len(sets))
	for column := range sets {
		if _, err := root.Get(column); err != nil {
			return "", nil, err
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	b := sqlgen.NewUpdate(e.entity.Table)
	for _, column := range columns {
		b.Set(column, sets[column])
	}
	if p != nil {
		b.Where(p.SQL, p.Args...)
	}
	sql, args := b.Build()
	return sql, args, nil
}

// GetDelete 产出删除语句而不执行。
func (e *Executor[T]) GetDelete(spec criteria.ISpecification) (string, []any, error) {
	p, _, err := e.applySpecification(spec)
	if err != nil {
		return "", nil, err
	}
	b := sqlgen.NewDelete(e.entity.Table)
	if p != nil {
		b.Where(p.SQL, p.Args...)
	}
	sql, args := b.Build()
	return sql, args, nil
}

// FindAll 返回满足规约的全部实体。
func (e *Executor[T]) FindAll(ctx context.Context, spec criteria.ISpecification, s query.Sort) ([]T, error) {
	sql, args, err := e.GetQuery(spec, s)
	if err != nil {
		return nil, err
	}
	return e.queryList(ctx, sql, args)
}

// FindOne 返回至多一个满足规约的实体。
func (e *Executor[T]) FindOne(ctx context.Context, spec criteria.ISpecification) (T, bool, error) {
	var zero T
	b, err := e.selectFor(spec, query.Unsorted())
	if err != nil {
		return zero, false, err
	}
	sql, args := b.Limit(2).Build()

	list, err := e.queryList(ctx, sql, args)
	if err != nil {
		return zero, false, err
	}
	switch len(list) {
	case 0:
		return zero, false, nil
	case 1:
		return list[0], true, nil
	default:
		return zero, false, errors.NewError(errors.ErrCodeInvalidInput,
			"query expected at most one result but found more")
	}
}

// FindAllPaged 分页查找。总量按需计算：能从页内容推断时不执行计数。
func (e *Executor[T]) FindAllPaged(ctx context.Context, spec criteria.ISpecification, pageable criteria.Pageable) (*criteria.Page[T], error) {
	b, err := e.selectFor(spec, pageable.Sort())
	if err != nil {
		return nil, err
	}
	if !pageable.IsUnpaged() {
		b.Limit(pageable.Size()).Offset(pageable.Offset())
	}

	sql, args := b.Build()
	content, err := e.queryList(ctx, sql, args)
	if err != nil {
		return nil, err
	}

	return criteria.NewPage(content, pageable, func() (int64, error) {
		return e.Count(ctx, spec)
	})
}

// Count 满足规约的总行数。结果集可能含多个分量（如查询形状被
// 规约改成了分组计数），逐行累加。
func (e *Executor[T]) Count(ctx context.Context, spec criteria.ISpecification) (int64, error) {
	sql, args, err := e.GetCountQuery(spec)
	if err != nil {
		return 0, err
	}

	rows, err := e.session.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var c int64
		if err := rows.Scan(&c); err != nil {
			return 0, errors.WrapError(err, errors.ErrCodeDatabase, "scan count")
		}
		total += c
	}
	if err := rows.Err(); err != nil {
		return 0, errors.WrapError(err, errors.ErrCodeDatabase, "iterate count rows")
	}
	return total, nil
}

// Exists 是否存在满足规约的行。只探测一行，不统计总量。
func (e *Executor[T]) Exists(ctx context.Context, spec criteria.ISpecification) (bool, error) {
	p, _, err := e.applySpecification(spec)
	if err != nil {
		return false, err
	}

	b := sqlgen.NewSelect().Expr("1").From(e.entity.Table)
	if p != nil {
		b.Where(p.SQL, p.Args...)
	}
	sql, args := b.Limit(1).Build()

	rows, err := e.session.Query(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, errors.WrapError(err, errors.ErrCodeDatabase, "probe existence")
	}
	return found, nil
}

// Update 按规约批量更新，返回受影响行数。
func (e *Executor[T]) Update(ctx context.Context, spec criteria.ISpecification, sets map[string]any) (int64, error) {
	sql, args, err := e.GetUpdate(spec, sets)
	if err != nil {
		return 0, err
	}
	res, err := e.session.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete 按规约批量删除，返回受影响行数。
// 无约束规约产出全表删除，调用方自行把关。
func (e *Executor[T]) Delete(ctx context.Context, spec criteria.ISpecification) (int64, error) {
	sql, args, err := e.GetDelete(spec)
	if err != nil {
		return 0, err
	}
	res, err := e.session.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (e *Executor[T]) queryList(ctx context.Context, sql string, args []any) ([]T, error) {
	rows, err := e.session.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		entity, err := e.mapper(rows)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeDatabase, "map row")
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "iterate rows")
	}
	return out, nil
}
