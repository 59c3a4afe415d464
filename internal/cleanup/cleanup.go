// Package cleanup removes banner objects that no program references any more.
// Replacing a banner uploads a new object under a fresh key and leaves the old
// one behind; the sweeper deletes those once they are older than a grace period.
package cleanup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/expotoworld/programs-service/internal/logging"
)

// DefaultPrefix is where banner objects live in the bucket.
const DefaultPrefix = "programs/"

// ObjectStore is the subset of the S3 client the sweeper uses.
type ObjectStore interface {
	s3.ListObjectsV2APIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// BannerRefs lists the banner URLs programs currently point at.
type BannerRefs interface {
	BannerImageURLs(ctx context.Context) ([]string, error)
}

// Sweeper deletes unreferenced objects under Prefix.
type Sweeper struct {
	Client ObjectStore
	Bucket string
	Refs   BannerRefs
	Prefix string
	// Grace keeps recent objects whose program update may still be in flight.
	Grace time.Duration
	Now   func() time.Time
}

// Result summarizes one sweep.
type Result struct {
	Checked      int            `json:"checked"`
	Deleted      int            `json:"deleted"`
	Retained     int            `json:"retained"`
	Errors       int            `json:"errors"`
	ErrorReasons map[string]int `json:"error_reasons"`
}

// Run performs one sweep over the bucket.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{ErrorReasons: map[string]int{}}
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-s.Grace)

	urls, err := s.Refs.BannerImageURLs(ctx)
	if err != nil {
		return res, fmt.Errorf("load banner references: %w", err)
	}
	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		if key := KeyFromURL(u, prefix); key != "" {
			referenced[key] = true
		}
	}

	pages := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return res, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			res.Checked++
			if referenced[key] || (obj.LastModified != nil && obj.LastModified.After(cutoff)) {
				res.Retained++
				continue
			}
			if _, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(key)}); err != nil {
				res.Errors++
				res.ErrorReasons[errorReason(err)]++
				logging.LogKV("warn", "banner delete failed", map[string]interface{}{"key": key, "error": err})
				continue
			}
			res.Deleted++
		}
	}

	logging.LogKV("info", "banner cleanup finished", map[string]interface{}{
		"checked":               res.Checked,
		"deleted_count":         res.Deleted,
		"retained_count":        res.Retained,
		"error_count":           res.Errors,
		"error_reasons":         res.ErrorReasons,
		"execution_duration_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

// KeyFromURL extracts the object key from a banner URL, or "" when the URL
// does not end in a banner key below prefix. Keys have the form
// <prefix><program id>/banner-<name>, matched against the tail of the path so
// a base URL path of its own is ignored.
func KeyFromURL(raw, prefix string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	want := strings.Split(strings.Trim(prefix, "/"), "/")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	n := len(want) + 2
	if len(segs) < n {
		return ""
	}
	tail := segs[len(segs)-n:]
	for i, seg := range want {
		if tail[i] != seg {
			return ""
		}
	}
	if _, err := strconv.ParseUint(tail[len(want)], 10, 64); err != nil {
		return ""
	}
	if !strings.HasPrefix(tail[n-1], "banner-") {
		return ""
	}
	return strings.Join(tail, "/")
}

func errorReason(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "accessdenied"):
		return "s3_access_denied"
	case strings.Contains(msg, "timeout"):
		return "s3_timeout"
	case strings.Contains(msg, "notfound"):
		return "s3_not_found"
	}
	return "s3_delete_error"
}
