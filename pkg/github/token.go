package github

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"github.com/smykla-skalski/objmerge/pkg/logger"
)

// TokenEnvVars lists the environment variables checked for a token, in order.
var TokenEnvVars = []string{"OBJMERGE_GITHUB_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"}

// TokenResolver finds the token used for github: inputs. Nil hooks are skipped.
type TokenResolver struct {
	// UseGHAuth tries `gh auth token` before the environment.
	UseGHAuth bool
	// LookupEnv reads an environment variable.
	LookupEnv func(key string) (string, bool)
	// GHAuthToken returns the token of the gh CLI.
	GHAuthToken func(ctx context.Context) (string, error)
	// Confirm asks whether to fall back to gh when nothing else is set.
	Confirm func(question string) bool
}

// NewTokenResolver returns a resolver reading the process environment. It
// prompts on stderr only when stdin and stdout are terminals and gh is installed.
func NewTokenResolver(useGHAuth bool) *TokenResolver {
	r := &TokenResolver{
		UseGHAuth: useGHAuth,
		LookupEnv: os.LookupEnv,
	}

	if isGHAvailable() {
		r.GHAuthToken = ghAuthToken

		if isInteractive() {
			r.Confirm = func(question string) bool {
				return promptYesNo(os.Stdin, os.Stderr, question)
			}
		}
	}

	return r
}

// GetToken resolves a token with NewTokenResolver.
func GetToken(ctx context.Context, log *logger.Logger, useGHAuth bool) (string, error) {
	return NewTokenResolver(useGHAuth).Resolve(ctx, log)
}

// Resolve tries, in order: gh when UseGHAuth is set, TokenEnvVars, and gh
// again after the user confirms.
func (r *TokenResolver) Resolve(ctx context.Context, log *logger.Logger) (string, error) {
	if r.UseGHAuth && r.GHAuthToken != nil {
		if token, err := r.GHAuthToken(ctx); err == nil && token != "" {
			log.Debug("using token from 'gh auth token' (explicit flag)")

			return token, nil
		}
	}

	if r.LookupEnv != nil {
		for _, key := range TokenEnvVars {
			if token, ok := r.LookupEnv(key); ok && token != "" {
				log.Debug("using token from env var", "var", key)

				return token, nil
			}
		}
	}

	if r.GHAuthToken == nil || r.Confirm == nil {
		return "", errors.WithStack(ErrGitHubTokenNotFound)
	}

	log.Debug("no token found, checking if user wants to use gh auth")

	if !r.Confirm("No GitHub token found. Use 'gh auth token'?") {
		return "", errors.WithStack(ErrGitHubTokenNotFound)
	}

	token, err := r.GHAuthToken(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting token from gh auth")
	}

	if token == "" {
		return "", errors.WithStack(ErrGHAuthEmptyToken)
	}

	return token, nil
}

func ghAuthToken(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", errors.Wrap(ErrGHAuthFailed, err.Error())
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.WithStack(ErrGHAuthEmptyToken)
	}

	return token, nil
}

func isGHAvailable() bool {
	_, err := exec.LookPath("gh")

	return err == nil
}

func isInteractive() bool {
	//nolint:gosec // G115: Fd() returns uintptr; safe narrowing on all supported platforms
	return term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: same as above
}

// promptYesNo writes the question to w, since stdout may carry the merged document.
func promptYesNo(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)

	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))

	return response == "y" || response == "yes"
}
