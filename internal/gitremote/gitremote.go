// Package gitremote finds the GitHub repository a local checkout points at.
package gitremote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// DefaultRemote is the remote consulted when none is named.
const DefaultRemote = "origin"

// ErrNoRemoteURL is returned when the remote has no URLs configured.
var ErrNoRemoteURL = errors.New("gitremote: remote has no url")

// Detect opens the repository containing path (searching parent
// directories) and returns the owner and name from the remote's first URL.
func Detect(path, remote string) (owner, repo string, err error) {
	if remote == "" {
		remote = DefaultRemote
	}
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("open git repository: %w", err)
	}
	rem, err := r.Remote(remote)
	if err != nil {
		return "", "", fmt.Errorf("git remote %q: %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", "", ErrNoRemoteURL
	}
	return ParseURL(urls[0])
}

// ParseURL extracts owner and name from https, ssh and scp-style remote URLs.
func ParseURL(raw string) (owner, repo string, err error) {
	raw = strings.TrimSpace(raw)
	var path string
	switch {
	case strings.Contains(raw, "://"):
		u, perr := url.Parse(raw)
		if perr != nil {
			return "", "", fmt.Errorf("parse remote url %q: %w", raw, perr)
		}
		path = u.Path
	case strings.Contains(raw, ":"):
		// git@github.com:owner/repo.git
		path = raw[strings.Index(raw, ":")+1:]
	default:
		return "", "", fmt.Errorf("unrecognized remote url %q", raw)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("remote url %q has no owner/repo path", raw)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
