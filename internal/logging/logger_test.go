package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerReturnsSameInstancePerComponent(t *testing.T) {
	a := GetLogger("dispatch-test-a")
	b := GetLogger("dispatch-test-a")
	assert.Same(t, a, b)
}

func TestSetupLoggingAppliesLevelAndFormat(t *testing.T) {
	l := GetLogger("dispatch-test-level")

	require.NoError(t, SetupLogging(&Config{
		Level:          "warn",
		Format:         "json",
		ConsoleEnabled: true,
	}))

	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	_, isJSON := l.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestSetupLoggingFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dispatchd.log")

	require.NoError(t, SetupLogging(&Config{
		Level:       "info",
		Format:      "text",
		FileEnabled: true,
		FilePath:    path,
		MaxFileSize: 1024 * 1024,
		BackupCount: 2,
	}))

	l := GetLogger("dispatch-test-file")
	l.Info("hello")

	_, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	base := GetLogger("dispatch-test-fields")
	base.SetLevel(logrus.InfoLevel)

	derived := base.WithFields(Fields{"task_id": "42"})
	assert.NotSame(t, base, derived)
	assert.Equal(t, base.Logger, derived.Logger)
}
