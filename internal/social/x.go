package social

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultXBaseURL = "https://api.twitter.com"

// OAuth1Credentials holds the user-context keys for the X API.
type OAuth1Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

func (c OAuth1Credentials) valid() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// XChannel posts status updates through the X v2 API using OAuth 1.0a
// user-context request signing.
type XChannel struct {
	creds      OAuth1Credentials
	baseURL    string
	httpClient *http.Client

	// overridable for deterministic signature tests
	now   func() time.Time
	nonce func() (string, error)
}

var _ Channel = (*XChannel)(nil)

// XOption adjusts an XChannel.
type XOption func(*XChannel)

// WithXBaseURL overrides the API host, for tests.
func WithXBaseURL(u string) XOption {
	return func(c *XChannel) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewXChannel constructs the channel.
func NewXChannel(creds OAuth1Credentials, opts ...XOption) (*XChannel, error) {
	if !creds.valid() {
		return nil, errors.New("social: incomplete oauth1 credentials")
	}
	c := &XChannel{
		creds:      creds,
		baseURL:    defaultXBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
		nonce:      randomNonce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements Channel.
func (c *XChannel) Name() string { return "direct" }

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Publish implements Channel. Updates longer than the platform limit are
// truncated rather than rejected.
func (c *XChannel) Publish(ctx context.Context, a Announcement) (string, error) {
	text := a.Update
	if len([]rune(text)) > 280 {
		runes := []rune(text)
		text = string(runes[:277]) + "..."
	}
	encoded, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("social: encode tweet: %w", err)
	}

	endpoint := c.baseURL + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("social: new tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	header, err := c.authorizationHeader(http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("social: tweet: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("social: tweet http %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var decoded tweetResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("social: decode tweet response: %w", err)
	}
	return "posted tweet " + decoded.Data.ID, nil
}

// authorizationHeader builds the OAuth 1.0a header for a request. extra holds
// query or form parameters that participate in the signature base string; a
// JSON body does not.
func (c *XChannel) authorizationHeader(method, rawURL string, extra url.Values) (string, error) {
	nonce, err := c.nonce()
	if err != nil {
		return "", fmt.Errorf("social: oauth nonce: %w", err)
	}
	oauthParams := map[string]string{
		"oauth_consumer_key":     c.creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", c.now().Unix()),
		"oauth_token":            c.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	signature, err := c.sign(method, rawURL, oauthParams, extra)
	if err != nil {
		return "", err
	}
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

func (c *XChannel) sign(method, rawURL string, oauthParams map[string]string, extra url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("social: parse url: %w", err)
	}

	params := url.Values{}
	for k, v := range oauthParams {
		params.Set(k, v)
	}
	for k, vs := range parsed.Query() {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		for _, v := range vs {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}
	sort.Strings(pairs)

	baseURL := parsed.Scheme + "://" + parsed.Host + parsed.Path
	base := strings.ToUpper(method) + "&" +
		percentEncode(baseURL) + "&" +
		percentEncode(strings.Join(pairs, "&"))
	signingKey := percentEncode(c.creds.ConsumerSecret) + "&" + percentEncode(c.creds.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// percentEncode applies RFC 3986 encoding as required by the OAuth 1.0a
// signature spec. url.QueryEscape is close but encodes space as '+'.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9',
			ch == '-', ch == '.', ch == '_', ch == '~':
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "%%%02X", ch)
		}
	}
	return b.String()
}

func randomNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
