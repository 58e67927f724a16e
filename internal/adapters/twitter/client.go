package twitter

import (
	"bytes"
	"context"
	"detectbot/internal/core/domain"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIURL        = "https://api.twitter.com/1.1"
	DefaultUploadURL     = "https://upload.twitter.com/1.1"
	DefaultMentionsCount = 200
)

type Credentials struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
}

// NewOAuthClient returns an HTTP client that signs every request with the given user credentials.
func NewOAuthClient(ctx context.Context, creds Credentials) *http.Client {
	config := oauth1.NewConfig(creds.APIKey, creds.APIKeySecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	return config.Client(ctx, token)
}

// Client talks to the Twitter REST API on behalf of the bot account.
type Client struct {
	http          *http.Client
	apiURL        string
	uploadURL     string
	mentionsCount int
}

func NewClient(httpClient *http.Client, apiURL, uploadURL string, mentionsCount int) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if mentionsCount <= 0 {
		mentionsCount = DefaultMentionsCount
	}

	return &Client{
		http:          httpClient,
		apiURL:        strings.TrimSuffix(apiURL, "/"),
		uploadURL:     strings.TrimSuffix(uploadURL, "/"),
		mentionsCount: mentionsCount,
	}
}

type status struct {
	ID                int64  `json:"id"`
	InReplyToStatusID *int64 `json:"in_reply_to_status_id"`
	Text              string `json:"text"`
	User              struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Entities struct {
		Media []struct {
			Type          string `json:"type"`
			MediaURL      string `json:"media_url"`
			MediaURLHTTPS string `json:"media_url_https"`
		} `json:"media"`
	} `json:"entities"`
}

type errorResponse struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type mediaResponse struct {
	MediaIDString string `json:"media_id_string"`
}

func (c *Client) HomeTimeline(ctx context.Context, count int) ([]domain.Post, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))

	var statuses []status
	if err := c.get(ctx, "/statuses/home_timeline.json", query, &statuses); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(statuses))
	for _, s := range statuses {
		p := domain.Post{ID: s.ID}
		if s.InReplyToStatusID != nil {
			p.InReplyToStatusID = *s.InReplyToStatusID
		}
		posts = append(posts, p)
	}

	return posts, nil
}

func (c *Client) MentionsTimeline(ctx context.Context, sinceID int64) ([]domain.Mention, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(c.mentionsCount))
	query.Set("include_entities", "true")
	if sinceID > 0 {
		query.Set("since_id", strconv.FormatInt(sinceID, 10))
	}

	var statuses []status
	if err := c.get(ctx, "/statuses/mentions_timeline.json", query, &statuses); err != nil {
		return nil, err
	}

	mentions := make([]domain.Mention, 0, len(statuses))
	for _, s := range statuses {
		m := domain.Mention{ID: s.ID, ScreenName: s.User.ScreenName, Text: s.Text}
		for _, media := range s.Entities.Media {
			m.Media = append(m.Media, domain.Media{
				Type:      media.Type,
				URL:       media.MediaURL,
				SecureURL: media.MediaURLHTTPS,
			})
		}
		mentions = append(mentions, m)
	}

	log.Debug().Int64("sinceId", sinceID).Int("mentions", len(mentions)).Msg("fetched mentions")

	return mentions, nil
}

func (c *Client) UpdateStatus(ctx context.Context, text string, inReplyTo int64) error {
	return c.update(ctx, text, inReplyTo, "")
}

func (c *Client) UpdateStatusWithMedia(ctx context.Context, text, filename string, inReplyTo int64,
	file []byte) error {
	mediaID, err := c.upload(ctx, filename, file)
	if err != nil {
		return err
	}

	return c.update(ctx, text, inReplyTo, mediaID)
}

func (c *Client) update(ctx context.Context, text string, inReplyTo int64, mediaID string) error {
	form := url.Values{}
	form.Set("status", text)
	form.Set("in_reply_to_status_id", strconv.FormatInt(inReplyTo, 10))
	if mediaID != "" {
		form.Set("media_ids", mediaID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/statuses/update.json",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: error creating request: %w", domain.ErrPlatform, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var posted status
	if err := c.do(req, &posted); err != nil {
		return err
	}

	log.Debug().Int64("statusId", posted.ID).Int64("inReplyTo", inReplyTo).Msg("posted status")

	return nil
}

func (c *Client) upload(ctx context.Context, filename string, file []byte) (string, error) {
	payloadBuf := new(bytes.Buffer)
	w := multipart.NewWriter(payloadBuf)

	part, err := w.CreateFormFile("media", filename)
	if err != nil {
		return "", fmt.Errorf("%w: error creating multipart body: %w", domain.ErrPlatform, err)
	}
	if _, err := part.Write(file); err != nil {
		return "", fmt.Errorf("%w: error writing multipart body: %w", domain.ErrPlatform, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: error closing multipart body: %w", domain.ErrPlatform, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/media/upload.json", payloadBuf)
	if err != nil {
		return "", fmt.Errorf("%w: error creating request: %w", domain.ErrPlatform, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result mediaResponse
	if err := c.do(req, &result); err != nil {
		return "", err
	}

	if result.MediaIDString == "" {
		return "", fmt.Errorf("%w: upload returned no media id", domain.ErrPlatform)
	}

	log.Debug().Str("mediaId", result.MediaIDString).Int("bytes", len(file)).Msg("uploaded media")

	return result.MediaIDString, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: error creating request: %w", domain.ErrPlatform, err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: error executing request: %w", domain.ErrPlatform, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: error reading response: %w", domain.ErrPlatform, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		err := fmt.Errorf("%w: %s %s: %s", domain.ErrPlatform, req.Method, req.URL.Path,
			describeError(res.StatusCode, body))
		log.Error().Err(err).Int("status", res.StatusCode).Send()
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: error unmarshalling response: %w", domain.ErrPlatform, err)
	}

	return nil
}

func describeError(statusCode int, body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return fmt.Sprintf("status %d: %s (code %d)", statusCode, envelope.Errors[0].Message,
			envelope.Errors[0].Code)
	}

	return fmt.Sprintf("status %d", statusCode)
}
