package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/signet/clientcli"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "empty endpoint", endpoint: ""},
		{name: "http endpoint", endpoint: "http://localhost:8080"},
		{name: "https endpoint with path", endpoint: "https://signer.example.com/api"},
		{name: "missing scheme", endpoint: "localhost:8080", wantErr: true},
		{name: "ftp scheme", endpoint: "ftp://example.com", wantErr: true},
		{name: "missing host", endpoint: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &clientcli.Config{Endpoint: tt.endpoint}
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("empty endpoint gets default", func(t *testing.T) {
		cfg := (&clientcli.Config{}).WithDefaults()
		assert.Equal(t, clientcli.DefaultEndpoint, cfg.Endpoint)
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		cfg := (&clientcli.Config{Endpoint: "http://localhost:8080/"}).WithDefaults()
		assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	})

	t.Run("original not mutated", func(t *testing.T) {
		orig := &clientcli.Config{}
		_ = orig.WithDefaults()
		assert.Empty(t, orig.Endpoint)
	})
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &clientcli.ConfigFile{}
	require.NoError(t, cfg.AddProfile(clientcli.Profile{
		Name:     "local",
		Endpoint: "http://localhost:8080",
		Bucket:   "reports",
		Expires:  600,
		Default:  true,
	}))
	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "prod", Endpoint: "https://signer.example.com"}))
	require.NoError(t, cfg.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		badPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(badPath, []byte(`profiles: [yaml: content`), 0o600))

		_, err := clientcli.LoadConfigFile(badPath)
		assert.Error(t, err)
	})
}

func TestConfigFile_Profiles(t *testing.T) {
	newFile := func() *clientcli.ConfigFile {
		return &clientcli.ConfigFile{Profiles: []clientcli.Profile{
			{Name: "local", Endpoint: "http://localhost:8080"},
			{Name: "prod", Endpoint: "https://signer.example.com", Default: true},
		}}
	}

	t.Run("get by name", func(t *testing.T) {
		p, err := newFile().GetProfile("local")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", p.Endpoint)
	})

	t.Run("empty name returns default", func(t *testing.T) {
		p, err := newFile().GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("first profile when none is default", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b"}}}
		p, err := cfg.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "a", p.Name)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := newFile().GetProfile("staging")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		_, err := (&clientcli.ConfigFile{}).GetProfile("")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
	})

	t.Run("add duplicate", func(t *testing.T) {
		err := newFile().AddProfile(clientcli.Profile{Name: "local"})
		assert.ErrorIs(t, err, clientcli.ErrProfileExists)
	})

	t.Run("update", func(t *testing.T) {
		cfg := newFile()
		require.NoError(t, cfg.UpdateProfile(clientcli.Profile{Name: "local", Endpoint: "http://127.0.0.1:9000", Bucket: "media"}))
		p, err := cfg.GetProfile("local")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9000", p.Endpoint)
		assert.Equal(t, "media", p.Bucket)

		assert.ErrorIs(t, cfg.UpdateProfile(clientcli.Profile{Name: "staging"}), clientcli.ErrProfileNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		cfg := newFile()
		require.NoError(t, cfg.RemoveProfile("local"))
		assert.Equal(t, []string{"prod"}, cfg.ProfileNames())
		assert.ErrorIs(t, cfg.RemoveProfile("local"), clientcli.ErrProfileNotFound)
	})

	t.Run("set default", func(t *testing.T) {
		cfg := newFile()
		require.NoError(t, cfg.SetDefault("local"))
		p, err := cfg.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "local", p.Name)
		assert.False(t, cfg.Profiles[1].Default)

		assert.ErrorIs(t, cfg.SetDefault("staging"), clientcli.ErrProfileNotFound)
	})
}

func TestConfigFromProfile(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))

	cfg := clientcli.ConfigFromProfile(&clientcli.Profile{
		Name:     "local",
		Endpoint: "http://localhost:8080",
		Bucket:   "reports",
		Expires:  600,
	})
	assert.Equal(t, &clientcli.Config{Endpoint: "http://localhost:8080", Bucket: "reports", Expires: 600}, cfg)
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "single config",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", Bucket: "one", Expires: 60},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", Bucket: "one", Expires: 60},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", Bucket: "one", Expires: 60},
				{Endpoint: "http://b.com", Expires: 120},
			},
			expected: &clientcli.Config{Endpoint: "http://b.com", Bucket: "one", Expires: 120},
		},
		{
			name: "zero values do not override",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com", Bucket: "one", Expires: 60},
				{},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", Bucket: "one", Expires: 60},
		},
		{
			name: "nil config is skipped",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com"},
				nil,
				{Bucket: "two"},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", Bucket: "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clientcli.MergeConfig(tt.configs...)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SIGNET_ENDPOINT", "http://test.example.com")
	t.Setenv("SIGNET_BUCKET", "reports")
	t.Setenv("SIGNET_EXPIRES", "900")
	t.Setenv("SIGNET_PROFILE", "prod")
	t.Setenv("SIGNET_CLI_CONFIG", "/tmp/signet.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "http://test.example.com", cfg.Endpoint)
	assert.Equal(t, "reports", cfg.Bucket)
	assert.Equal(t, int64(900), cfg.Expires)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/signet.yaml", clientcli.ConfigPathFromEnv())

	t.Setenv("SIGNET_EXPIRES", "soon")
	assert.Zero(t, clientcli.ConfigFromEnv().Expires)
}
