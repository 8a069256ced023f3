package env

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "plain assignments",
			content: "BASE_URL=http://localhost:3000\nGREETING=#hello",
			want:    map[string]string{"BASE_URL": "http://localhost:3000", "GREETING": "#hello"},
		},
		{
			name:    "export prefix",
			content: "export BASE_URL=https://staging.example.com\nexport  PAGE=index.html",
			want:    map[string]string{"BASE_URL": "https://staging.example.com", "PAGE": "index.html"},
		},
		{
			name:    "export prefix with quotes",
			content: `export TITLE="Hello Webdriver"`,
			want:    map[string]string{"TITLE": "Hello Webdriver"},
		},
		{
			name:    "trailing comment on unquoted value",
			content: "BASE_URL=http://localhost:8080 # dev server\nPAGE=index.html  #  landing",
			want:    map[string]string{"BASE_URL": "http://localhost:8080", "PAGE": "index.html"},
		},
		{
			name:    "hash without leading space is part of the value",
			content: "ANCHOR=page.html#section",
			want:    map[string]string{"ANCHOR": "page.html#section"},
		},
		{
			name:    "trailing comment after quoted value",
			content: `TITLE="Hello # Webdriver" # heading text`,
			want:    map[string]string{"TITLE": "Hello # Webdriver"},
		},
		{
			name:    "single quotes",
			content: `SELECTOR='#list > li'`,
			want:    map[string]string{"SELECTOR": "#list > li"},
		},
		{
			name:    "unterminated quote is kept",
			content: `TITLE="Hello`,
			want:    map[string]string{"TITLE": `"Hello`},
		},
		{
			name:    "comment lines, blanks and junk are skipped",
			content: "# suite variables\n\nnot an assignment\n=orphan\nPAGE=index.html\n",
			want:    map[string]string{"PAGE": "index.html"},
		},
		{
			name:    "spaces around key and value",
			content: "  PAGE  =  index.html  ",
			want:    map[string]string{"PAGE": "index.html"},
		},
		{
			name:    "later assignment wins",
			content: "PAGE=a.html\nexport PAGE=b.html",
			want:    map[string]string{"PAGE": "b.html"},
		},
		{
			name:    "empty file",
			content: "",
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadDotEnv(writeEnvFile(t, tt.content))
			if err != nil {
				t.Fatalf("LoadDotEnv: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d variables %v, want %d", len(got), got, len(tt.want))
			}
			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("%s = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestLoadDotEnv_DoesNotTouchEnvironment(t *testing.T) {
	t.Setenv("WEBSPEC_DOTENV_CHECK", "outer")
	if _, err := LoadDotEnv(writeEnvFile(t, "export WEBSPEC_DOTENV_CHECK=inner")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("WEBSPEC_DOTENV_CHECK"); got != "outer" {
		t.Errorf("environment changed to %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if _, err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
