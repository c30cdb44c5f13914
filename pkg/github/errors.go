// Package github fetches merge inputs from GitHub repositories.
package github

import "github.com/cockroachdb/errors"

var (
	ErrGitHubTokenNotFound = errors.New(
		"GitHub token not found: use --use-gh-auth flag or set GITHUB_TOKEN",
	)
	ErrGHAuthFailed     = errors.New("failed to get token from 'gh auth token'")
	ErrGHAuthEmptyToken = errors.New("'gh auth token' returned empty output")
	ErrValidatingToken  = errors.New("failed to validate GitHub token")
	ErrInvalidRef       = errors.New("invalid GitHub file reference")
	ErrFileNotFound     = errors.New("file not found in repository")
	ErrNotAFile         = errors.New("path is not a file")
)
