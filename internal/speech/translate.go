package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTranslateBaseURL = "https://translate.google.com"
	// translateMaxRunes is the longest text the endpoint accepts in one request.
	translateMaxRunes = 200
	maxClipBytes      = 5 << 20
)

// TranslateSynthesizer uses the public Google Translate TTS endpoint. It needs no
// key and serves as the fallback voice.
type TranslateSynthesizer struct {
	baseURL    string
	lang       string
	httpClient *http.Client
}

// NewTranslateSynthesizer creates a Translate synthesizer. An empty baseURL uses the public endpoint.
func NewTranslateSynthesizer(baseURL string, timeout time.Duration) *TranslateSynthesizer {
	if baseURL == "" {
		baseURL = defaultTranslateBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TranslateSynthesizer{
		baseURL:    baseURL,
		lang:       cacheLang,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *TranslateSynthesizer) Name() string {
	return "translate"
}

func (t *TranslateSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", t.lang)
	q.Set("q", truncateRunes(text, translateMaxRunes))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return &Audio{Text: text, Data: data, Format: FormatMP3}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
