package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/sharetube/roomsync/pkg/httpclient"
	"golang.org/x/net/html"
)

const (
	maxFolderPageBytes = 8 << 20
	maxEntrySpan       = 1000
)

var (
	ErrEmptyFolder = errors.New("folder has no video files")

	folderEntryRegex = regexp.MustCompile(`\[null,"([A-Za-z0-9_-]{10,})"\]`)
	mimeTypeRegex    = regexp.MustCompile(`"([a-z]+)/([A-Za-z0-9.+-]+)"`)
	escapedByteRegex = regexp.MustCompile(`\\x([0-9A-Fa-f]{2})`)
	fileNameRegex    = regexp.MustCompile(`(?i)"([^"\\]{1,240}\.(?:mp4|m4v|webm|mov|mkv|avi|wmv|flv|mpe?g|3gp|ts|ogv))"`)
	titleSuffixRegex = regexp.MustCompile(`\s*-\s*Google Drive\s*$`)
)

type File struct {
	Id       string
	MimeType string
	Name     string
}

type Folder struct {
	Title string
	Files []File
}

func FetchFolder(ctx context.Context, client *http.Client, folderId string) (*Folder, error) {
	page, err := httpclient.Get(ctx, client, FolderURL(folderId), maxFolderPageBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folder page: %w", err)
	}

	return ParseFolder(page)
}

// ParseFolder recovers the video files listed in a folder page's embedded script data.
// Files keep first-occurrence order and duplicate ids are dropped.
func ParseFolder(page []byte) (*Folder, error) {
	data := unescape(string(page))

	folder := Folder{Title: folderTitle(page)}
	seen := make(map[string]struct{})

	entries := folderEntryRegex.FindAllStringSubmatchIndex(data, -1)
	for i, m := range entries {
		id := data[m[2]:m[3]]

		// an entry owns the text up to the next entry, so an id without a mime never borrows one
		end := min(len(data), m[1]+maxEntrySpan)
		if i+1 < len(entries) {
			end = min(end, entries[i+1][0])
		}
		segment := data[m[1]:end]

		mime := mimeTypeRegex.FindStringSubmatch(segment)
		if mime == nil || mime[1] != "video" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		folder.Files = append(folder.Files, File{
			Id:       id,
			MimeType: mime[1] + "/" + mime[2],
			Name:     longestFileName(segment),
		})
	}

	if len(folder.Files) == 0 {
		return nil, ErrEmptyFolder
	}

	return &folder, nil
}

func unescape(s string) string {
	s = escapedByteRegex.ReplaceAllStringFunc(s, func(match string) string {
		b, err := strconv.ParseUint(match[2:], 16, 8)
		if err != nil {
			return match
		}
		return string(rune(b))
	})
	return strings.ReplaceAll(s, `\/`, `/`)
}

func longestFileName(window string) string {
	var best string
	for _, m := range fileNameRegex.FindAllStringSubmatch(window, -1) {
		if len(m[1]) > len(best) {
			best = m[1]
		}
	}
	return best
}

func folderTitle(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(titleSuffixRegex.ReplaceAllString(getTitle(doc), ""))
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild == nil {
			return ""
		}
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}
