package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"ventas/internal/errors"

	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var errNoServer = errors.New("no server behind the recording pool")

// recordedStatement is one statement sent to a recordingPool.
type recordedStatement struct {
	pool  string
	query string
	args  []any
}

// statementLog collects statements from every pool of one test database.
type statementLog struct {
	mu         sync.Mutex
	statements []recordedStatement
}

func (l *statementLog) add(pool, query string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statements = append(l.statements, recordedStatement{pool: pool, query: query, args: args})
}

func (l *statementLog) last(t *testing.T) recordedStatement {
	t.Helper()

	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.statements, "no statement reached the database")

	return l.statements[len(l.statements)-1]
}

// recordingPool is a gorm.ConnPool that logs statements instead of running
// them. Writes report affected rows; reads fail with errNoServer.
type recordingPool struct {
	name     string
	log      *statementLog
	affected int64
}

func (p *recordingPool) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNoServer
}

func (p *recordingPool) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	p.log.add(p.name, query, args)

	return rowsAffected(p.affected), nil
}

func (p *recordingPool) QueryContext(_ context.Context, query string, args ...any) (*sql.Rows, error) {
	p.log.add(p.name, query, args)

	return nil, errNoServer
}

func (p *recordingPool) QueryRowContext(_ context.Context, query string, args ...any) *sql.Row {
	p.log.add(p.name, query, args)

	return &sql.Row{}
}

type rowsAffected int64

func (r rowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (r rowsAffected) RowsAffected() (int64, error) { return int64(r), nil }

// newRecordingDB opens a database with a primary and one read replica, both
// recording into the returned log.
func newRecordingDB(t *testing.T, affected int64) (*gorm.DB, *statementLog) {
	t.Helper()

	log := &statementLog{}
	primary := &recordingPool{name: "primary", log: log, affected: affected}
	replica := &recordingPool{name: "replica", log: log, affected: affected}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: primary}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{pgdriver.New(pgdriver.Config{Conn: replica})},
	})))

	return db, log
}
