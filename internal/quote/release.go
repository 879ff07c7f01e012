package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ReleaseUnavailable is reported when the latest release cannot be fetched.
const ReleaseUnavailable = "github api down, please ignore"

const githubAPI = "https://api.github.com"

// ReleaseChecker looks up the latest published release of a repository.
type ReleaseChecker struct {
	client *resty.Client
	repo   string
	logger *zap.Logger
}

// NewReleaseChecker creates a checker for repo ("owner/name"). An empty
// baseURL uses the public GitHub API.
func NewReleaseChecker(baseURL, repo string, logger *zap.Logger) *ReleaseChecker {
	if baseURL == "" {
		baseURL = githubAPI
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/vnd.github+json")
	return &ReleaseChecker{
		client: client,
		repo:   repo,
		logger: logger.Named("release"),
	}
}

type latestRelease struct {
	TagName string `json:"tag_name"`
}

// Latest returns the tag of the latest release, or ReleaseUnavailable when
// the lookup fails for any reason. It never returns an error: the check
// must not block startup.
func (c *ReleaseChecker) Latest(ctx context.Context) string {
	tag, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("Release check failed", zap.String("repo", c.repo), zap.Error(err))
		return ReleaseUnavailable
	}
	c.logger.Info("Latest release on GitHub, please make sure you are staying updated",
		zap.String("repo", c.repo),
		zap.String("tag", tag))
	return tag
}

func (c *ReleaseChecker) fetch(ctx context.Context) (string, error) {
	var out latestRelease
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/repos/%s/releases/latest", c.repo))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if out.TagName == "" {
		return "", fmt.Errorf("release has no tag")
	}
	return out.TagName, nil
}
