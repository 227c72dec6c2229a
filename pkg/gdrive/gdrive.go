package gdrive

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	fileIdRegex     = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
	filePathRegex   = regexp.MustCompile(`/file/(?:u/\d+/)?d/([A-Za-z0-9_-]{10,})`)
	folderPathRegex = regexp.MustCompile(`/drive/(?:u/\d+/)?folders/([A-Za-z0-9_-]{10,})`)
)

func isDriveHost(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "drive.google.com" || host == "docs.google.com" || host == "drive.usercontent.google.com"
}

// FileId extracts a single-file id and optional resource key from a share link.
func FileId(u *url.URL) (id, resourceKey string, ok bool) {
	if !isDriveHost(u) {
		return "", "", false
	}

	q := u.Query()
	resourceKey = q.Get("resourcekey")

	if m := filePathRegex.FindStringSubmatch(u.EscapedPath()); m != nil {
		return m[1], resourceKey, true
	}

	if id := q.Get("id"); fileIdRegex.MatchString(id) {
		return id, resourceKey, true
	}

	return "", "", false
}

func FolderId(u *url.URL) (string, bool) {
	if !isDriveHost(u) {
		return "", false
	}

	m := folderPathRegex.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return "", false
	}

	return m[1], true
}

// DirectURL is the direct-download form of a drive file.
func DirectURL(id, resourceKey string) string {
	s := "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
	if resourceKey != "" {
		s += "&resourcekey=" + url.QueryEscape(resourceKey)
	}
	return s
}

func FolderURL(id string) string {
	return "https://drive.google.com/drive/folders/" + url.PathEscape(id)
}

// IsDirectURL reports whether raw is a drive direct-download link.
func IsDirectURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !isDriveHost(u) {
		return false
	}

	return strings.HasPrefix(u.Path, "/uc") && u.Query().Get("id") != ""
}
