package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStartSchemaRetry_Success(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))
	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS site_photo").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := StartSchemaRetry(ctx, dbMock, 10*time.Millisecond, zap.NewNop())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("schema retry did not finish")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStartSchemaRetry_ErrorLogged(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS site_photo").
		WillReturnError(fmt.Errorf("permission denied"))

	var buf bytes.Buffer
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&buf),
		zapcore.WarnLevel,
	)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartSchemaRetry(ctx, dbMock, 10*time.Millisecond, logger)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	out := buf.String()
	if !strings.Contains(out, "database not ready, will retry") || !strings.Contains(out, "permission denied") {
		t.Errorf("expected retry warning, got:\n%s", out)
	}
}

func TestStartSchemaRetry_CancelBeforeTicker(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := StartSchemaRetry(ctx, dbMock, time.Hour, zap.NewNop())
	cancel()
	<-done

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database calls: %v", err)
	}
}

func TestPrepare_PingTimeout(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing().WillDelayFor(time.Minute)

	start := time.Now()
	err = prepare(context.Background(), dbMock, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected ping error")
	}
	if !strings.Contains(err.Error(), "ping postgres") {
		t.Errorf("error = %q; want ping postgres", err.Error())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("prepare took %v; want it bounded by the timeout", elapsed)
	}
}

func TestPrepare_CreatesSchema(t *testing.T) {
	dbMock, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS site_photo").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := prepare(context.Background(), dbMock, time.Second); err != nil {
		t.Fatalf("prepare error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
