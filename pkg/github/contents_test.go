package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/smykla-skalski/objmerge/pkg/github"
	"github.com/smykla-skalski/objmerge/pkg/logger"
)

func TestParseFileRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    github.FileRef
		wantErr bool
	}{
		{
			in:   "acme/config/base.json",
			want: github.FileRef{Owner: "acme", Repo: "config", Path: "base.json"},
		},
		{
			in:   "acme/config/envs/prod/values.yaml@v1.2.0",
			want: github.FileRef{Owner: "acme", Repo: "config", Path: "envs/prod/values.yaml", Ref: "v1.2.0"},
		},
		{in: "acme/config", wantErr: true},
		{in: "acme//file.json", wantErr: true},
		{in: "acme/config/", wantErr: true},
		{in: "acme/config/file.json@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := github.ParseFileRef(tt.in)
			if tt.wantErr {
				if !errors.Is(err, github.ErrInvalidRef) {
					t.Errorf("ParseFileRef() error = %v, want ErrInvalidRef", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseFileRef() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFileRef() mismatch (-want +got):\n%s", diff)
			}

			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resources":{"core":{"limit":5000,"remaining":4999}}}`))
	})

	mux.HandleFunc("/repos/acme/config/contents/base.json", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)

			return
		}

		content := `{"ref":"` + r.URL.Query().Get("ref") + `"}`

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"name":     "base.json",
			"path":     "base.json",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})

	mux.HandleFunc("/repos/acme/config/contents/dir", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"type":"file","name":"a.json","path":"dir/a.json"}]`))
	})

	mux.HandleFunc("/repos/acme/config/contents/missing.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchFile(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ctx := context.Background()

	client, err := github.NewClient(ctx, logger.Discard(), "test-token", github.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{name: "default branch", ref: "acme/config/base.json", want: `{"ref":""}`},
		{name: "pinned ref", ref: "acme/config/base.json@main", want: `{"ref":"main"}`},
		{name: "missing file", ref: "acme/config/missing.json", wantErr: github.ErrFileNotFound},
		{name: "directory", ref: "acme/config/dir", wantErr: github.ErrNotAFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ref, err := github.ParseFileRef(tt.ref)
			if err != nil {
				t.Fatalf("ParseFileRef() error = %v", err)
			}

			got, err := client.FetchFile(ctx, ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FetchFile() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("FetchFile() error = %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("FetchFile() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := github.NewClient(context.Background(), logger.Discard(), "")
	if !errors.Is(err, github.ErrGitHubTokenNotFound) {
		t.Errorf("NewClient() error = %v, want ErrGitHubTokenNotFound", err)
	}
}

func TestNewClientRejectsFailedValidation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	_, err := github.NewClient(context.Background(), logger.Discard(), "bad", github.WithBaseURL(srv.URL))
	if !errors.Is(err, github.ErrValidatingToken) {
		t.Errorf("NewClient() error = %v, want ErrValidatingToken", err)
	}
}
