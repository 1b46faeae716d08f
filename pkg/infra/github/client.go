package github

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
)

// Client publishes release assets through the GitHub API with token
// authentication, the same credential the CI workflow it replaces used.
type Client struct {
	gh *github.Client
}

// Option is a functional option for Client configuration
type Option func(*Client) error

// WithBaseURLs points the client at a GitHub Enterprise (or test) endpoint.
func WithBaseURLs(baseURL, uploadURL string) Option {
	return func(c *Client) error {
		gh, err := c.gh.WithEnterpriseURLs(baseURL, uploadURL)
		if err != nil {
			return goerr.Wrap(err, "failed to set GitHub API URLs")
		}
		c.gh = gh
		return nil
	}
}

// NewClient creates a GitHub client authenticated with an access token.
func NewClient(token string, opts ...Option) (*Client, error) {
	c := &Client{gh: github.NewClient(nil).WithAuthToken(token)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// EnsureRelease returns the release ID for the tag, creating the release
// when none exists yet.
func (c *Client) EnsureRelease(ctx context.Context, owner, repo, tag string) (int64, error) {
	rel, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err == nil {
		return rel.GetID(), nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return 0, goerr.Wrap(err, "failed to get release by tag", goerr.V("tag", tag))
	}

	created, _, err := c.gh.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName: github.Ptr(tag),
		Name:    github.Ptr(tag),
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create release", goerr.V("tag", tag))
	}
	return created.GetID(), nil
}

// UploadAsset attaches the file at path to the release. A duplicate asset
// name fails the upload unless clobber is set, in which case the existing
// asset is deleted first.
func (c *Client) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, path string, clobber bool) error {
	name := filepath.Base(path)

	existing, err := c.findAsset(ctx, owner, repo, releaseID, name)
	if err != nil {
		return err
	}
	if existing != nil {
		if !clobber {
			return goerr.New("asset already exists on release", goerr.V("asset", name))
		}
		if _, err := c.gh.Repositories.DeleteReleaseAsset(ctx, owner, repo, existing.GetID()); err != nil {
			return goerr.Wrap(err, "failed to delete existing asset", goerr.V("asset", name))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return goerr.Wrap(err, "failed to open asset file", goerr.V("path", path))
	}
	defer f.Close()

	if _, _, err := c.gh.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, &github.UploadOptions{
		Name: name,
	}, f); err != nil {
		return goerr.Wrap(err, "failed to upload release asset", goerr.V("asset", name))
	}
	return nil
}

func (c *Client) findAsset(ctx context.Context, owner, repo string, releaseID int64, name string) (*github.ReleaseAsset, error) {
	opts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := c.gh.Repositories.ListReleaseAssets(ctx, owner, repo, releaseID, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list release assets")
		}
		for _, a := range assets {
			if a.GetName() == name {
				return a, nil
			}
		}
		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// DownloadZipball downloads the source code zipball for a specific ref
func (c *Client) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	url, _, err := c.gh.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, 3) // Follow up to 3 redirects
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get zipball download URL",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("ref", ref))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", goerr.V("url", url.String()))
	}

	// Use the same client transport for authentication
	httpClient := &http.Client{Transport: c.gh.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball", goerr.V("url", url.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for zipball download",
			goerr.V("status", resp.StatusCode), goerr.V("url", url.String()))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read zipball response body")
	}
	return data, nil
}
