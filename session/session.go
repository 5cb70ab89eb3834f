// Package session 提供数据库会话抽象
//
// 设计目标：
// 1. 隔离具体的数据库驱动，便于单元测试（Mock）
// 2. 语句统一以 ? 占位，按方言自动重绑
// 3. 每个会话携带追踪标识，语句执行可观测
package session

import (
	"context"
	"database/sql"

	"querykit/logging"
	"querykit/query/dialect"
)

// ISession 数据库会话接口。
type ISession interface {
	// 查询操作
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow

	// 执行操作
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// 事务操作
	Begin(ctx context.Context) (ITransaction, error)

	// Dialect 底层方言
	Dialect() dialect.Dialect

	// 连接管理
	Ping(ctx context.Context) error
	Close() error
}

// ITransaction 事务会话。
type ITransaction interface {
	ISession

	Commit() error
	Rollback() error
}

// IRows 查询结果集接口。
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error

	Columns() ([]string, error)
}

// IRow 单行结果接口。
type IRow interface {
	Scan(dest ...any) error
}

// Config 会话配置。
type Config struct {
	// Driver 驱动名（mysql、sqlite、postgres 等）。
	// 调用方必须确保驱动已通过空导入注册。
	Driver string

	// DSN 数据源
	DSN string

	// 连接池配置（可选）
	MaxOpenConns int
	MaxIdleConns int

	// Logger 为 nil 时不输出日志
	Logger logging.Logger
}
