package git

import (
	"fmt"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

var (
	httpsRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/([^/]+)$`)
	sshRemote   = regexp.MustCompile(`^[^@]+@([^:]+):([^/]+)/([^/]+)$`)
	gitRemote   = regexp.MustCompile(`^(?:git|ssh)://(?:[^@/]+@)?([^/:]+)(?::\d+)?/([^/]+)/([^/]+)$`)
)

// ParseRepoURL extracts host, owner and repo name from a git remote URL.
// Supports multiple URL formats:
//   - HTTPS: https://github.com/owner/repo.git
//   - SSH: git@github.com:owner/repo.git
//   - Git protocol: git://github.com/owner/repo.git
func ParseRepoURL(remoteURL string) (host, owner, repo string, err error) {
	remoteURL = strings.TrimSuffix(strings.TrimSpace(remoteURL), "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	for _, re := range []*regexp.Regexp{httpsRemote, sshRemote, gitRemote} {
		if m := re.FindStringSubmatch(remoteURL); len(m) == 4 {
			return m[1], m[2], m[3], nil
		}
	}

	return "", "", "", fmt.Errorf("unrecognized git URL format: %s", remoteURL)
}

// CommitURLBase turns a remote URL into the prefix of its web commit links,
// e.g. https://github.com/owner/repo/commit/
func CommitURLBase(remoteURL string) (string, error) {
	host, owner, repo, err := ParseRepoURL(remoteURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/%s/%s/commit/", host, owner, repo), nil
}

// RemoteURL returns the first URL of the named remote of the repository at path
func RemoteURL(path, name string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", name)
	}
	return urls[0], nil
}
