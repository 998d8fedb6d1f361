package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

func TestQueryLoggerReportsSlowStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	ql := newQueryLogger(logg, 100*time.Millisecond)

	sql := func() (string, int64) { return "SELECT * FROM product_pricing_tiers", 3 }

	ql.Trace(context.Background(), time.Now(), sql, nil)
	require.Zero(t, buf.Len(), "fast query should not be logged")

	ql.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	require.Zero(t, buf.Len(), "not found is an expected outcome")

	ql.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Contains(t, buf.String(), "db.slow_query")
	require.Contains(t, buf.String(), "product_pricing_tiers")

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), sql, errors.New("relation does not exist"))
	require.Contains(t, buf.String(), "db.query_failed")
}

func TestQueryLoggerWithoutLoggerDiscards(t *testing.T) {
	require.Equal(t, gormlogger.Discard, newQueryLogger(nil, time.Second))
}
