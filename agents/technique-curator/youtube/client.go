package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/config"
	"github.com/tkramer22/bjj-os-sub000/shared/quota"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube Data API unit costs per call type.
const (
	searchQuotaCost = 100
	listQuotaCost   = 1
)

// Client discovers candidate instructional videos through the YouTube Data
// API. All calls are charged against the shared quota counter.
type Client struct {
	service     *youtube.Service
	config      *config.YouTubeConfig
	oauthConfig *oauth2.Config
	token       *oauth2.Token
	quota       *quota.Counter
}

func NewClient(cfg *config.YouTubeConfig, counter *quota.Counter) (*Client, error) {
	ctx := context.Background()

	// Create OAuth2 config for the device authorization flow.
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
		Endpoint:     google.Endpoint,
	}

	token, err := getToken(oauthConfig, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	tokenSource := &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: cfg.TokenFile,
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)

	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:     service,
		config:      cfg,
		oauthConfig: oauthConfig,
		token:       token,
		quota:       counter,
	}, nil
}

// SearchCandidates runs the configured search queries and returns candidate
// videos published within the last week, up to maxResults across all queries.
func (c *Client) SearchCandidates(ctx context.Context, maxResults int64) ([]*models.VideoCandidate, error) {
	since := time.Now().AddDate(0, 0, -7)

	var videoIDs []string
	seen := make(map[string]bool)

	for _, query := range c.config.SearchQueries {
		if err := c.quota.Reserve(ctx, searchQuotaCost); err != nil {
			if errors.Is(err, quota.ErrQuotaExhausted) {
				log.Printf("Quota exhausted after %d video IDs, stopping discovery", len(videoIDs))
				break
			}
			return nil, err
		}

		searchCall := c.service.Search.List([]string{"id"}).
			Q(query).
			Type("video").
			Order("date").
			PublishedAfter(since.Format(time.RFC3339)).
			MaxResults(maxResults)

		searchResponse, err := searchCall.Context(ctx).Do()
		if err != nil {
			log.Printf("Search failed for query %q: %v", query, err)
			continue
		}

		for _, item := range searchResponse.Items {
			if item.Id != nil && item.Id.VideoId != "" && !seen[item.Id.VideoId] {
				seen[item.Id.VideoId] = true
				videoIDs = append(videoIDs, item.Id.VideoId)
			}
		}
	}

	if len(videoIDs) == 0 {
		log.Println("No candidate videos found")
		return []*models.VideoCandidate{}, nil
	}

	if int64(len(videoIDs)) > maxResults {
		videoIDs = videoIDs[:maxResults]
	}

	log.Printf("Found %d candidate videos across %d queries", len(videoIDs), len(c.config.SearchQueries))

	return c.fetchDetails(ctx, videoIDs)
}

// fetchDetails resolves full metadata for the given video IDs in batches.
func (c *Client) fetchDetails(ctx context.Context, videoIDs []string) ([]*models.VideoCandidate, error) {
	var candidates []*models.VideoCandidate
	batchSize := 50

	for i := 0; i < len(videoIDs); i += batchSize {
		end := i + batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		if err := c.quota.Reserve(ctx, listQuotaCost); err != nil {
			if errors.Is(err, quota.ErrQuotaExhausted) {
				log.Printf("Quota exhausted with %d candidates resolved", len(candidates))
				break
			}
			return nil, err
		}

		videosCall := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(strings.Join(videoIDs[i:end], ","))

		videosResponse, err := videosCall.Context(ctx).Do()
		if err != nil {
			log.Printf("Failed to get video details for batch: %v", err)
			continue
		}

		for _, item := range videosResponse.Items {
			candidate := &models.VideoCandidate{
				ID:              item.Id,
				Title:           item.Snippet.Title,
				Description:     item.Snippet.Description,
				ChannelTitle:    item.Snippet.ChannelTitle,
				Duration:        item.ContentDetails.Duration,
				DurationSeconds: ParseDurationSeconds(item.ContentDetails.Duration),
				URL:             fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.Id),
			}

			if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				candidate.PublishedAt = publishedAt
			}

			if item.Statistics != nil {
				candidate.ViewCount = int64(item.Statistics.ViewCount)
			}

			candidates = append(candidates, candidate)
		}
	}

	log.Printf("Retrieved %d candidates", len(candidates))
	return candidates, nil
}

// ParseDurationSeconds converts an ISO 8601 duration ("PT2H15M30S") to
// seconds. Unparseable input yields 0.
func ParseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	re := regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)
	matches := re.FindStringSubmatch(duration)

	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int

	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			totalSeconds += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			totalSeconds += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			totalSeconds += seconds
		}
	}

	return totalSeconds
}

// tokenSaver wraps an oauth2.TokenSource to automatically save refreshed
// tokens, so refreshed tokens survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex // Protects concurrent token refresh operations
}

// Token implements oauth2.TokenSource, refreshing and persisting as needed.
func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tokenSource := ts.config.TokenSource(context.Background(), ts.token)

	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		log.Println("Token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Printf("Warning: Failed to save refreshed token: %v", err)
		}
	}

	return newToken, nil
}

// getToken loads a token from disk or runs the device authorization flow.
// An expired token with a refresh token is kept; the tokenSaver refreshes it.
func getToken(config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err == nil {
		if tok.RefreshToken != "" {
			log.Printf("Loaded token from file (expires: %v)", tok.Expiry)
			return tok, nil
		}
		if tok.Valid() {
			return tok, nil
		}
	}

	log.Println("Getting new token from web...")
	tok, err = getTokenFromWeb(config)
	if err != nil {
		return nil, err
	}

	if err := saveToken(tokenFile, tok); err != nil {
		log.Printf("Warning: Failed to save token: %v", err)
	}
	return tok, nil
}

func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	ctx := context.Background()

	resp, err := config.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Printf("YOUTUBE DEVICE AUTHORIZATION REQUIRED\n")
	fmt.Printf("%s\n", strings.Repeat("=", 80))
	fmt.Printf("1. Visit %s in your browser (any device works).\n", resp.VerificationURI)
	fmt.Printf("2. Enter this code when prompted: %s\n\n", resp.UserCode)
	fmt.Printf("Waiting for authorization to complete... (Ctrl+C to cancel)\n")
	fmt.Printf("%s\n", strings.Repeat("-", 80))

	tok, err := config.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Printf("Device authorization response failed (%s): %s", retrieveErr.Response.Status, strings.TrimSpace(string(retrieveErr.Body)))
		}
		return nil, fmt.Errorf("device authorization did not complete: %w. Ensure your OAuth client is created as 'TVs and Limited Input devices' and that the YouTube Data API v3 is enabled", err)
	}

	fmt.Printf("\nAuthorization successful! Token saved.\n")
	fmt.Printf("%s\n\n", strings.Repeat("=", 80))

	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
