package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizerCore_MasksFieldsAndContext(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(NewSanitizerCore(obsCore, []string{"password", "Token"}, "****"))

	l.With(zap.String("token", "abc")).Info("login",
		zap.String("password", "hunter2"),
		zap.String("email", "a@b.c"),
		zap.String("header", "Bearer eyJhbGci"),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "****", fields["token"])
	assert.Equal(t, "****", fields["password"])
	assert.Equal(t, "a@b.c", fields["email"])
	assert.Equal(t, "Bearer ****", fields["header"])
}

func TestAsyncCore_FlushesOnSync(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	ac := NewAsyncCore(obsCore, 10, 5, time.Hour)
	l := zap.New(ac)

	l.With(zap.String("component", "test")).Info("one")
	l.Info("two")
	require.NoError(t, l.Sync())

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "test", logs.All()[0].ContextMap()["component"])
	assert.Equal(t, "two", logs.All()[1].Message)

	// a second Sync must not panic
	assert.NoError(t, ac.Sync())
}

func TestLoggerManager_DefaultAndNamed(t *testing.T) {
	lm, err := NewLoggerManager([]string{filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	_, err = lm.GetLogger(DefaultLoggerName)
	require.NoError(t, err)

	l := lm.Named("session")
	require.NotNil(t, l)
	assert.Error(t, lm.AddLogger(DefaultLoggerName, zap.NewNop()))
	assert.Error(t, lm.AddLogger("x", nil))
}

func TestLoggerManager_FileLogger(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "api.log")
	cfgPath := filepath.Join(dir, "log.config.json")
	body := `{"loggers": {"api": {"level": "debug", "outputPaths": ["` + logPath + `"]}}}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	lm, err := NewLoggerManager([]string{cfgPath})
	require.NoError(t, err)

	lm.Named("api").Debug("request", zap.String("authorization", "Bearer secret"))
	require.NoError(t, lm.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"request"`)
	assert.NotContains(t, string(data), "secret")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestEncoderConfig(t *testing.T) {
	ec := encoderConfig(DefaultConfig.Encoding, false)
	assert.Equal(t, "msg", ec.MessageKey)
	assert.NotNil(t, ec.EncodeLevel)
	assert.NotNil(t, ec.EncodeTime)
	assert.NotNil(t, ec.EncodeDuration)
	assert.NotNil(t, ec.EncodeCaller)

	enc := zapcore.NewJSONEncoder(ec)
	buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Message: "hi"}, []zapcore.Field{zap.Duration("d", 1500*time.Millisecond)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"d":"1.5s"`)
}
