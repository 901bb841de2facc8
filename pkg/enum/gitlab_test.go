package enum

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

func TestNewGitLabEnumerator_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GitLabConfig
		wantErr bool
	}{
		{"requires token", GitLabConfig{Project: "owner/project"}, true},
		{"requires a target", GitLabConfig{Token: "glpat_test"}, true},
		{"project", GitLabConfig{Token: "glpat_test", Project: "owner/project"}, false},
		{"group", GitLabConfig{Token: "glpat_test", Group: "mygroup"}, false},
		{"user", GitLabConfig{Token: "glpat_test", User: "dev"}, false},
		{"self-hosted", GitLabConfig{Token: "glpat_test", Group: "g", BaseURL: "https://gitlab.example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewGitLabEnumerator(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var _ Enumerator = e
		})
	}
}

func TestGitLabEnumerator_Enumerate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":42,"path_with_namespace":"team/chat","default_branch":"main",
			"http_url_to_repo":"https://gitlab.com/team/chat.git"}`)
	})
	mux.HandleFunc("/api/v4/projects/42/repository/tree", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		fmt.Fprint(w, `[
			{"id":"t1","name":"docs","type":"tree","path":"docs"},
			{"id":"b1","name":"readme.md","type":"blob","path":"readme.md"},
			{"id":"b2","name":"data.bin","type":"blob","path":"data.bin"}
		]`)
	})
	mux.HandleFunc("/api/v4/projects/42/repository/files/readme.md/raw", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "damn it")
	})
	mux.HandleFunc("/api/v4/projects/42/repository/files/data.bin/raw", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0, 1, 2})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e, err := NewGitLabEnumerator(GitLabConfig{Token: "glpat_test", BaseURL: srv.URL, Project: "42"})
	require.NoError(t, err)

	var provs []types.GitProvenance
	var texts []string
	err = e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		provs = append(provs, prov.(types.GitProvenance))
		texts = append(texts, string(content))
		return nil
	})
	require.NoError(t, err)

	require.Len(t, provs, 1)
	assert.Equal(t, "team/chat", provs[0].RepoPath)
	assert.Equal(t, "readme.md", provs[0].BlobPath)
	assert.Equal(t, "damn it", texts[0])

	projects, err := e.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []RepoInfo{{Name: "team/chat", CloneURL: "https://gitlab.com/team/chat.git", DefaultBranch: "main"}}, projects)
}
