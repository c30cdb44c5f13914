package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v84/github"
)

// FileRef locates a file in a repository, optionally at a branch, tag or
// commit.
type FileRef struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseFileRef parses "owner/repo/path/to/file[@ref]".
func ParseFileRef(s string) (FileRef, error) {
	spec, ref, hasRef := strings.Cut(s, "@")
	if hasRef && ref == "" {
		return FileRef{}, errors.Wrapf(ErrInvalidRef, "%q: empty ref after @", s)
	}

	parts := strings.SplitN(spec, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return FileRef{}, errors.Wrapf(ErrInvalidRef, "%q: want owner/repo/path[@ref]", s)
	}

	return FileRef{
		Owner: parts[0],
		Repo:  parts[1],
		Path:  strings.Trim(parts[2], "/"),
		Ref:   ref,
	}, nil
}

func (r FileRef) String() string {
	s := r.Owner + "/" + r.Repo + "/" + r.Path
	if r.Ref != "" {
		s += "@" + r.Ref
	}

	return s
}

// FetchFile returns the decoded content of a file.
func (c *Client) FetchFile(ctx context.Context, ref FileRef) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref.Ref}
	}

	c.log.Debug("fetching file", "ref", ref.String())

	fileContent, _, _, err := c.Repositories.GetContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		if isNotFoundError(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "%s", ref)
		}

		return nil, errors.Wrapf(err, "fetching %s", ref)
	}

	if fileContent == nil {
		return nil, errors.Wrapf(ErrNotAFile, "%s", ref)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", ref)
	}

	return []byte(content), nil
}

// isNotFoundError checks if an error is a 404 Not Found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}
