// internal/workers/publishing/publish-post/instagram.go
package publishpost

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-post-scheduler/internal/common/errors"
	commonhttp "ai-post-scheduler/internal/common/http"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"
)

// Container status codes reported by the Graph API.
const (
	containerFinished   = "FINISHED"
	containerInProgress = "IN_PROGRESS"
	containerError      = "ERROR"
	containerExpired    = "EXPIRED"
	containerPublished  = "PUBLISHED"
)

// Graph error codes worth retrying: unknown, service, rate limits, throttling.
var transientGraphCodes = map[int]bool{1: true, 2: true, 4: true, 17: true, 32: true, 341: true, 613: true}

type graphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		IsTransient  bool   `json:"is_transient"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

type graphID struct {
	ID string `json:"id"`
}

type containerStatus struct {
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
}

// InstagramPublisher publishes through the Instagram Graph API: it creates
// a media container from a public image URL, waits for the container to
// finish processing, then publishes it.
type InstagramPublisher struct {
	config  *InstagramConfig
	timeout time.Duration
	http    *commonhttp.Client
	host    MediaHost
	sleep   retry.SleepFunc
	logger  logger.Logger
	now     func() time.Time
}

// NewInstagramPublisher creates the publisher. host may be nil, in which
// case the provider's own image URL is handed to the Graph API.
func NewInstagramPublisher(config *InstagramConfig, host MediaHost, log logger.Logger) *InstagramPublisher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InstagramPublisher{
		config:  config,
		timeout: timeout,
		http:    commonhttp.NewClient(timeout),
		host:    host,
		sleep:   retry.ContextSleep,
		logger:  log.WithFields(map[string]interface{}{"platform": PlatformInstagram}),
		now:     time.Now,
	}
}

func (p *InstagramPublisher) Name() string {
	return PlatformInstagram
}

func (p *InstagramPublisher) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error) {
	imageURL, err := p.mediaURL(ctx, asset, postType)
	if err != nil {
		return nil, err
	}

	containerID, err := p.createContainer(ctx, imageURL, caption, postType)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("media container created", map[string]interface{}{
		"itemId":      asset.Request.ID,
		"containerId": containerID,
	})

	if err := p.waitForContainer(ctx, containerID); err != nil {
		return nil, err
	}

	var published graphID
	form := url.Values{
		"creation_id":  {containerID},
		"access_token": {p.config.AccessToken},
	}
	if err := p.http.PostForm(ctx, p.endpoint(p.config.UserID, "media_publish"), form, &published); err != nil {
		return p.publishFailed(ctx, asset, containerID, postType, err)
	}

	return p.result(published.ID, postType), nil
}

func (p *InstagramPublisher) result(mediaID string, postType models.PostType) *Result {
	return &Result{
		Platform:    PlatformInstagram,
		MediaID:     mediaID,
		PostType:    postType,
		PublishedAt: p.now().UTC(),
	}
}

// publishFailed handles a media_publish call that got no Graph response.
// The request may still have been applied, so the container status decides
// between success, a safe retry, and an unknown outcome.
func (p *InstagramPublisher) publishFailed(ctx context.Context, asset *models.GeneratedAsset, containerID string, postType models.PostType, err error) (*Result, error) {
	var statusErr *commonhttp.StatusError
	if stderrors.As(err, &statusErr) {
		return nil, p.classify(err)
	}

	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	var status containerStatus
	query := url.Values{
		"fields":       {"status_code,status"},
		"access_token": {p.config.AccessToken},
	}
	if lookupErr := p.http.GetJSON(checkCtx, p.endpoint(containerID), query, &status); lookupErr != nil {
		p.logger.Warn("media container status unavailable after publish failure", map[string]interface{}{
			"itemId":      asset.Request.ID,
			"containerId": containerID,
			"error":       lookupErr,
		})
		return nil, errors.NewPublishOutcomeUnknownError(PlatformInstagram, err).
			WithMetadata("containerId", containerID)
	}

	switch status.StatusCode {
	case containerPublished:
		// the Graph API does not report the media id on the container
		p.logger.Warn("media_publish response lost but container is published", map[string]interface{}{
			"itemId":      asset.Request.ID,
			"containerId": containerID,
			"error":       err,
		})
		return p.result(containerID, postType), nil
	case containerFinished:
		return nil, p.classify(err)
	default:
		return nil, errors.NewPublishOutcomeUnknownError(PlatformInstagram, err).
			WithMetadata("containerId", containerID).
			WithMetadata("containerStatus", status.StatusCode)
	}
}

func (p *InstagramPublisher) mediaURL(ctx context.Context, asset *models.GeneratedAsset, postType models.PostType) (string, error) {
	if p.host == nil {
		if asset.SourceURL == "" {
			return "", errors.NewPublishFatalError(PlatformInstagram,
				stderrors.New("no media host configured and the provider returned no image URL"))
		}
		return asset.SourceURL, nil
	}

	prepared, err := PrepareImage(asset.Image, postType)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s.jpg", asset.GeneratedAt.UTC().Format("2006-01-02"), asset.Request.ID)
	return p.host.Host(ctx, key, prepared, "image/jpeg")
}

func (p *InstagramPublisher) createContainer(ctx context.Context, imageURL string, caption models.Caption, postType models.PostType) (string, error) {
	form := url.Values{
		"image_url":    {imageURL},
		"access_token": {p.config.AccessToken},
	}
	if postType == models.PostTypeStory {
		form.Set("media_type", "STORIES")
	} else {
		form.Set("caption", caption.Text())
	}

	var container graphID
	if err := p.http.PostForm(ctx, p.endpoint(p.config.UserID, "media"), form, &container); err != nil {
		return "", p.classify(err)
	}
	if container.ID == "" {
		return "", errors.NewPublishFailedError(PlatformInstagram, stderrors.New("graph api returned no container id"))
	}
	return container.ID, nil
}

func (p *InstagramPublisher) waitForContainer(ctx context.Context, containerID string) error {
	attempts := p.config.PollAttempts
	if attempts < 1 {
		attempts = 1
	}
	query := url.Values{
		"fields":       {"status_code,status"},
		"access_token": {p.config.AccessToken},
	}

	for i := 0; i < attempts; i++ {
		var status containerStatus
		if err := p.http.GetJSON(ctx, p.endpoint(containerID), query, &status); err != nil {
			return p.classify(err)
		}

		switch status.StatusCode {
		case containerFinished:
			return nil
		case containerError, containerExpired:
			return errors.NewPublishFatalError(PlatformInstagram,
				fmt.Errorf("media container %s is %s: %s", containerID, status.StatusCode, status.Status))
		}

		if i < attempts-1 {
			if err := p.sleep(ctx, p.config.PollInterval); err != nil {
				return err
			}
		}
	}

	return errors.NewPublishFailedError(PlatformInstagram,
		fmt.Errorf("media container %s still %s after %d checks", containerID, containerInProgress, attempts))
}

func (p *InstagramPublisher) endpoint(parts ...string) string {
	base := strings.TrimRight(p.config.GraphBaseURL, "/")
	if p.config.APIVersion != "" {
		base += "/" + p.config.APIVersion
	}
	return base + "/" + strings.Join(parts, "/")
}

// classify turns a Graph API failure into a transient or fatal publish error.
func (p *InstagramPublisher) classify(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	var statusErr *commonhttp.StatusError
	if !stderrors.As(err, &statusErr) {
		return errors.NewPublishFailedError(PlatformInstagram, err)
	}

	var ge graphError
	_ = json.Unmarshal(statusErr.Body, &ge)

	transient := statusErr.StatusCode >= 500 ||
		statusErr.StatusCode == http.StatusTooManyRequests ||
		ge.Error.IsTransient ||
		transientGraphCodes[ge.Error.Code]

	cause := err
	if ge.Error.Message != "" {
		cause = fmt.Errorf("graph error %d: %s", ge.Error.Code, ge.Error.Message)
	}

	var se *errors.StandardError
	if transient {
		se = errors.NewPublishFailedError(PlatformInstagram, cause)
	} else {
		se = errors.NewPublishFatalError(PlatformInstagram, cause)
	}
	se = se.WithMetadata("statusCode", statusErr.StatusCode)
	if ge.Error.Code != 0 {
		se = se.WithMetadata("graphCode", ge.Error.Code)
	}
	if ge.Error.FBTraceID != "" {
		se = se.WithMetadata("fbtraceId", ge.Error.FBTraceID)
	}
	return se
}
