package paths

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform points the home and user config lookups at fixed
// directories for the duration of the test.
func fakePlatform(t *testing.T, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	userConfig := filepath.Join(home, "AppConfig")
	fakePlatform(t, home, userConfig)

	if runtime.GOOS != "linux" {
		cfg, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userConfig, "folio"), cfg)

		data, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userConfig, "folio", "data"), data)
		return
	}

	t.Run("xdg directories", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		t.Setenv("XDG_DATA_HOME", "/xdg/data")

		cfg, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/xdg/config/folio", cfg)

		data, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/xdg/data/folio", data)
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")

		cfg, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "folio"), cfg)

		data, err := DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".local", "share", "folio"), data)
	})
}

func TestDefaultDirsWithoutHome(t *testing.T) {
	noHome := errors.New("no home")
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return "", noHome }
	platformDir.userConfigDir = func() (string, error) { return "", noHome }
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := DefaultConfigDir()
	assert.ErrorIs(t, err, noHome)

	// An explicit directory never consults the platform.
	got, err := ResolveConfigDir("/explicit")
	require.NoError(t, err)
	assert.Equal(t, "/explicit", got)
}

func TestResolveConfigDir(t *testing.T) {
	home := t.TempDir()
	fakePlatform(t, home, filepath.Join(home, "AppConfig"))
	t.Setenv("XDG_CONFIG_HOME", "")
	platformDefault, err := DefaultConfigDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag over env", "/flag/config", "/env/config", "/flag/config"},
		{"env without flag", "", "/env/config", "/env/config"},
		{"platform default", "", "", platformDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	home := t.TempDir()
	fakePlatform(t, home, filepath.Join(home, "AppConfig"))
	t.Setenv("XDG_DATA_HOME", "")
	platformDefault, err := DefaultDataDir()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{"flag over everything", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"config over env", "", "/config/data", "/env/data", "/config/data"},
		{"env alone", "", "", "/env/data", "/env/data"},
		{"platform default", "", "", "", platformDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelativeDirsBecomeAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "relative/env")

	cfg, err := ResolveConfigDir("relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg), cfg)

	data, err := ResolveDataDir("", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(data), data)
	assert.Equal(t, "env", filepath.Base(data))
}

func TestConfigAndTokenFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "config.yaml"), ConfigFile("/cfg"))
	assert.Equal(t, filepath.Join("/cfg", "token.json"), TokenFile("/cfg"))
}
