package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"postlift/domain/campaign"
	"postlift/domain/core"
	"postlift/internal/config"
	"postlift/internal/errors"
	"postlift/ports"
)

// PostClient fetches media for a business account from the Instagram Graph
// API. Captions are run through the mention classifier on the way in so that
// downstream consumers see a judged ProductMention wherever the heuristic is
// confident, and Unclassified where it is not.
type PostClient struct {
	accessToken string
	classifier  *MentionClassifier
	httpClient  *http.Client
	baseURL     string // overridable for tests
}

// NewPostClient creates an Instagram post source
func NewPostClient(cfg config.InstagramConfig, classifier *MentionClassifier) ports.PostSource {
	return &PostClient{
		accessToken: cfg.AccessToken,
		classifier:  classifier,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     cfg.GraphURL,
	}
}

type mediaEnvelope struct {
	Data   []wireMedia `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type wireMedia struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int    `json:"like_count"`
	CommentsCount int    `json:"comments_count"`
}

// FetchPosts pages through the account's media, newest first as the API
// returns them. Ordering is left to callers; the engine sorts its inputs.
func (c *PostClient) FetchPosts(ctx context.Context, username core.Username) ([]campaign.Post, error) {
	var all []campaign.Post

	params := url.Values{}
	params.Set("fields", "id,caption,timestamp,like_count,comments_count")
	params.Set("access_token", c.accessToken)

	endpoint := fmt.Sprintf("%s/%s/media?%s", c.baseURL, username.String(), params.Encode())
	for endpoint != "" {
		envelope, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		for _, wm := range envelope.Data {
			all = append(all, c.normalizeMedia(wm))
		}
		endpoint = envelope.Paging.Next
	}
	return all, nil
}

func (c *PostClient) fetchPage(ctx context.Context, endpoint string) (*mediaEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInstagramError, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInstagramError,
			fmt.Errorf("%w: request to %s: %v", core.ErrSourceUnavailable, endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.WithCode(errors.CodeInstagramError,
			fmt.Errorf("%w: instagram returned %d: %s", core.ErrSourceUnavailable, resp.StatusCode, string(body)))
	}

	var envelope mediaEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.WithCode(errors.CodeInstagramError,
			fmt.Errorf("%w: decoding media payload: %v", core.ErrMalformedPayload, err))
	}
	return &envelope, nil
}

// normalizeMedia maps one wire media item onto the domain post. A timestamp
// that fails to parse degrades to the zero time rather than dropping the post.
func (c *PostClient) normalizeMedia(wm wireMedia) campaign.Post {
	ts, err := time.Parse(time.RFC3339, wm.Timestamp)
	if err != nil {
		ts = time.Time{}
	}

	mention := campaign.MentionUnclassified
	if c.classifier != nil {
		mention = c.classifier.Classify(wm.Caption)
	}

	return campaign.Post{
		ID:             core.PostID(wm.ID),
		Timestamp:      ts,
		Caption:        wm.Caption,
		LikesCount:     wm.LikeCount,
		CommentsCount:  wm.CommentsCount,
		ProductMention: mention,
	}
}
