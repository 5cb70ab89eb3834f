package session

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"querykit/errors"
	"querykit/logging"
	"querykit/query/dialect"
)

// Session 基于 database/sql 的最小实现。
type Session struct {
	db      *sql.DB
	dialect dialect.Dialect
	logger  logging.Logger
	traceID string
}

// Open 创建会话。驱动需由调用方空导入注册，
// 例如测试层 `_ "modernc.org/sqlite"`。
func Open(config Config) (*Session, error) {
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, config.DSN)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "open database")
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &Session{
		db:      db,
		dialect: dialect.New(driver),
		logger:  logger,
		traceID: uuid.NewString(),
	}, nil
}

func (s *Session) Query(ctx context.Context, query string, args ...any) (IRows, error) {
	q := s.dialect.Rebind(query)
	s.trace(ctx, q, len(args))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "query")
	}
	return &Rows{rows: rows}, nil
}

func (s *Session) QueryRow(ctx context.Context, query string, args ...any) IRow {
	q := s.dialect.Rebind(query)
	s.trace(ctx, q, len(args))
	return &Row{row: s.db.QueryRowContext(ctx, q, args...)}
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := s.dialect.Rebind(query)
	s.trace(ctx, q, len(args))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "exec")
	}
	return res, nil
}

func (s *Session) Begin(ctx context.Context) (ITransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "begin transaction")
	}
	return &Tx{session: s, tx: tx}, nil
}

func (s *Session) Dialect() dialect.Dialect { return s.dialect }

func (s *Session) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Session) Close() error                   { return s.db.Close() }

// Raw 返回底层连接（特殊场景使用）。
func (s *Session) Raw() *sql.DB { return s.db }

func (s *Session) trace(ctx context.Context, query string, argc int) {
	s.logger.Debug(ctx, "execute statement",
		logging.String("session", s.traceID),
		logging.String("sql", query),
		logging.Int("args", argc))
}

// Tx 事务会话。语句重绑与追踪沿用所属会话。
type Tx struct {
	session *Session
	tx      *sql.Tx
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (IRows, error) {
	q := t.session.dialect.Rebind(query)
	t.session.trace(ctx, q, len(args))
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "query")
	}
	return &Rows{rows: rows}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) IRow {
	q := t.session.dialect.Rebind(query)
	t.session.trace(ctx, q, len(args))
	return &Row{row: t.tx.QueryRowContext(ctx, q, args...)}
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := t.session.dialect.Rebind(query)
	t.session.trace(ctx, q, len(args))
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "exec")
	}
	return res, nil
}

// Begin 不支持嵌套事务，返回自身。
func (t *Tx) Begin(ctx context.Context) (ITransaction, error) { return t, nil }

func (t *Tx) Dialect() dialect.Dialect { return t.session.dialect }

func (t *Tx) Ping(ctx context.Context) error { return t.session.Ping(ctx) }
func (t *Tx) Close() error                   { return nil }

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }
