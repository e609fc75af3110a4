package upload

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// verifyUploadURL probes a freshly created URL with a HEAD request. A non-2xx
// answer means the published file is not actually reachable, which fails the
// whole upload call.
func (u *Uploader) verifyUploadURL(uploadURL string) error {
	client := retryhttp.NewClient(u.logger)

	req, err := retryablehttp.NewRequest(http.MethodHead, uploadURL, nil)
	if err != nil {
		return fmt.Errorf("build verification request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("verify upload URL %s: %w", uploadURL, err)
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			u.logger.Printf(err.Error())
		}
	}(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("upload URL %s responded with status %d", uploadURL, resp.StatusCode)
	}

	u.logger.Donef("Verified %s (status %d)", uploadURL, resp.StatusCode)
	return nil
}
