package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		fp := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(fp, []byte(content), 0o600))
		return fp
	}

	tests := []struct {
		name string
		path string
		want map[string]interface{}
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yml"), want: map[string]interface{}{}},
		{name: "empty document", path: write("empty.yml", ""), want: map[string]interface{}{}},
		{name: "unparseable document", path: write("invalid.yml", "courses_email: [sender"), want: map[string]interface{}{}},
		{name: "scalar document", path: write("scalar.yml", "just a string"), want: map[string]interface{}{}},
		{
			name: "valid document",
			path: write("config.yml", "courses_email:\n  sender: hajni@test.hu\n  api_key: abc\n"),
			want: map[string]interface{}{
				"courses_email": map[string]interface{}{"sender": "hajni@test.hu", "api_key": "abc"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoadConfigFile(tt.path))
		})
	}
}

func TestNewConfig(t *testing.T) {
	dir := t.TempDir()
	doc := "courses_email:\n  sender: file@test.hu\n  api_key: file-key\n  provider: mailgun\npagination:\n  coursesPerPage: 6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(doc), 0o600))

	t.Setenv("COURSES_WORKDIR", dir)
	t.Setenv("ENV", "test")

	t.Run("document over defaults", func(t *testing.T) {
		conf := NewConfig()
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.Equal(t, dir, conf.WorkDir)
		assert.Equal(t, "file@test.hu", conf.Email.Sender)
		assert.Equal(t, "file-key", conf.Email.APIKey)
		assert.Equal(t, "mailgun", conf.Email.Provider)
		assert.Equal(t, 6, conf.Pagination.CoursesPerPage)
		assert.Equal(t, DefaultPageWindow, conf.Pagination.Window)
	})

	t.Run("environment over document", func(t *testing.T) {
		t.Setenv(EnvEmailSender, "env@test.hu")
		t.Setenv(EnvEmailAPIKey, "env-key")
		t.Setenv("COURSES_PAGINATION_WINDOW", "7")

		conf := NewConfig()
		assert.Equal(t, "env@test.hu", conf.Email.Sender)
		assert.Equal(t, "env-key", conf.Email.APIKey)
		assert.Equal(t, 7, conf.Pagination.Window)
		assert.Equal(t, mail.Address{Name: "Képzés Mindenkinek", Address: "env@test.hu"}, conf.DefaultFromEmail())
	})
}

func TestConfig_SiteURL(t *testing.T) {
	conf := &Config{SiteProtocol: "https", SiteDomain: "kepzesmindenkinek.hu"}
	assert.Equal(t, "https://kepzesmindenkinek.hu", conf.SiteURL())
}
