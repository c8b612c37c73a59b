package gitremote

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T, remotes map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	for name, u := range remotes {
		_, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{u}})
		require.NoError(t, err)
	}
	return dir
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{raw: "https://github.com/acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{raw: "https://github.com/acme/widgets", wantOwner: "acme", wantRepo: "widgets"},
		{raw: "git@github.com:acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{raw: "ssh://git@github.com/acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{raw: "https://ghe.example.com/org/team/widgets/", wantOwner: "team", wantRepo: "widgets"},
		{raw: "https://github.com/acme", wantErr: true},
		{raw: "widgets", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			owner, repo, err := ParseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestDetect(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{
		"origin":   "git@github.com:acme/widgets.git",
		"upstream": "https://github.com/upstream-org/widgets.git",
	})

	owner, repo, err := Detect(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", repo)

	owner, _, err = Detect(dir, "upstream")
	require.NoError(t, err)
	assert.Equal(t, "upstream-org", owner)
}

func TestDetect_FromSubdirectory(t *testing.T) {
	dir := setupTestRepo(t, map[string]string{"origin": "https://github.com/acme/widgets"})
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	owner, repo, err := Detect(sub, "")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", owner+"/"+repo)
}

func TestDetect_Errors(t *testing.T) {
	_, _, err := Detect(t.TempDir(), "")
	assert.Error(t, err, "not a repository")

	dir := setupTestRepo(t, nil)
	_, _, err = Detect(dir, "")
	assert.ErrorIs(t, err, git.ErrRemoteNotFound)
}
