// Package selfupdate checks GitHub Releases for a newer pgtc build. It is
// intentionally never called from "generate" or "check" — introspection
// runs must be deterministic and network-bounded to the configured
// Postgres server, not to GitHub. "pgtc update" is the only caller.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Repo is the GitHub "owner/name" releases are checked against.
const Repo = "riftdata/pgtc"

// Release is the subset of the GitHub releases API response pgtc cares
// about.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Draft   bool   `json:"draft"`
}

// CheckLatest fetches the most recent non-draft release and reports
// whether it is newer than currentVersion.
func CheckLatest(ctx context.Context, currentVersion string) (*Release, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", Repo), nil)
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("querying GitHub releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("GitHub releases API returned %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, false, fmt.Errorf("decoding release: %w", err)
	}
	return &rel, isNewer(currentVersion, rel.TagName), nil
}

// isNewer reports whether latest differs from current. pgtc ships
// date-based tags (vYYYY.MM.DD), so a plain string inequality is enough —
// there is no semver range to reason about.
func isNewer(current, latest string) bool {
	return current != "" && latest != "" && current != latest
}
