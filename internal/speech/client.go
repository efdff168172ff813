package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultVoiceID = "Rachel"
	ttsModelID     = "eleven_monolingual_v1"
)

// ErrNotConfigured reports a missing ElevenLabs credential. It surfaces at
// first use of the speech capability so the rest of the service keeps
// running without it.
var ErrNotConfigured = errors.New("speech: ELEVENLABS_API_KEY not configured")

// Config controls how the ElevenLabs client behaves.
type Config struct {
	APIKey         string
	BaseURL        string
	DefaultVoiceID string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *logging.Logger
}

// Client wraps the ElevenLabs text-to-speech endpoint.
type Client struct {
	apiKey         string
	baseURL        string
	defaultVoiceID string
	httpClient     *http.Client
	logger         *logging.Logger
}

// Result is a synthesized utterance.
type Result struct {
	AudioBase64 string `json:"audioBase64"`
	MimeType    string `json:"mimeType"`
}

// New creates a configured Client with sane defaults. A missing API key is
// not an error here; it is reported on the first Synthesize call.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	voiceID := strings.TrimSpace(cfg.DefaultVoiceID)
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:         strings.TrimSpace(cfg.APIKey),
		baseURL:        baseURL,
		defaultVoiceID: voiceID,
		httpClient:     httpClient,
		logger:         logger,
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to speech. An empty voiceID selects the default
// voice. The audio is returned base64-encoded with its media type.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (Result, error) {
	if c.apiKey == "" {
		return Result{}, ErrNotConfigured
	}
	if strings.TrimSpace(voiceID) == "" {
		voiceID = c.defaultVoiceID
	}

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: ttsModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.7,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("speech: encode request: %w", err)
	}

	endpoint := c.baseURL + "/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("speech: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("speech: synthesize call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("speech synthesis rejected", "status", resp.StatusCode, "voice", voiceID)
		return Result{}, fmt.Errorf("speech: synthesize returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("speech: read audio: %w", err)
	}

	return Result{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		MimeType:    "audio/mpeg",
	}, nil
}
