package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postlift/domain/campaign"
	"postlift/domain/core"
)

func TestClassify(t *testing.T) {
	mc := NewMentionClassifier([]string{"Glow Serum", "Night Cream", ""})

	tests := []struct {
		name    string
		caption string
		want    campaign.ProductMention
	}{
		{"names a product", "Obsessed with the GLOW SERUM this week", campaign.MentionYes},
		{"second product", "my night cream routine, link in bio", campaign.MentionYes},
		{"promo but no product", "New drop! Use my code MIA20 at checkout", campaign.MentionUnclassified},
		{"sponsored tag only", "beach day #ad", campaign.MentionUnclassified},
		{"plain lifestyle", "sunset over the marina tonight", campaign.MentionNo},
		{"empty caption", "   ", campaign.MentionNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mc.Classify(tt.caption))
		})
	}
}

func TestFetchPosts_NormalizesAndClassifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/mia/media")
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "p1", "caption": "Loving the glow serum!", "timestamp": "2024-06-02T10:00:00Z", "like_count": 120, "comments_count": 14},
				{"id": "p2", "caption": "coffee run", "timestamp": "not-a-time", "like_count": 30, "comments_count": 2}
			],
			"paging": {}
		}`))
	}))
	defer server.Close()

	client := &PostClient{
		accessToken: "tok",
		classifier:  NewMentionClassifier([]string{"glow serum"}),
		httpClient:  server.Client(),
		baseURL:     server.URL,
	}

	posts, err := client.FetchPosts(context.Background(), "mia")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "p1", posts[0].ID.String())
	assert.Equal(t, campaign.MentionYes, posts[0].ProductMention)
	assert.Equal(t, 120, posts[0].LikesCount)
	assert.False(t, posts[0].Timestamp.IsZero())

	// Bad timestamp degrades to zero time instead of dropping the post.
	assert.True(t, posts[1].Timestamp.IsZero())
	assert.Equal(t, campaign.MentionNo, posts[1].ProductMention)
}

func TestFetchPosts_FollowsPaging(t *testing.T) {
	var server *httptest.Server
	calls := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			_, _ = w.Write([]byte(`{
				"data": [{"id": "p1", "caption": "", "timestamp": "2024-06-01T09:00:00Z"}],
				"paging": {"next": "` + server.URL + `/mia/media?after=abc"}
			}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": "p2", "caption": "", "timestamp": "2024-06-02T09:00:00Z"}], "paging": {}}`))
	}))
	defer server.Close()

	client := &PostClient{
		classifier: NewMentionClassifier(nil),
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	posts, err := client.FetchPosts(context.Background(), "mia")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, posts, 2)
}

func TestFetchPosts_SurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := &PostClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	_, err := client.FetchPosts(context.Background(), "mia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.True(t, errors.Is(err, core.ErrSourceUnavailable))
}

func TestFetchPosts_FlagsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id"`))
	}))
	defer server.Close()

	client := &PostClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
	}

	_, err := client.FetchPosts(context.Background(), "mia")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedPayload))
	assert.True(t, core.IsUpstreamError(err))
}
