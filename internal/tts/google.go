package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://texttospeech.googleapis.com"
	cloudScope     = "https://www.googleapis.com/auth/cloud-platform"
)

// GoogleClient talks to the Google Cloud Text-to-Speech REST API using a
// service-account credentials file.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewGoogleClient reads the service-account JSON at credentialsPath and
// builds an authenticated client.
func NewGoogleClient(ctx context.Context, credentialsPath string) (*GoogleClient, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 30 * time.Second

	return &GoogleClient{
		httpClient: client,
		baseURL:    defaultBaseURL,
	}, nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize converts text into MP3 audio using the given catalog voice.
func (c *GoogleClient) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if len(voice.LanguageCodes) == 0 {
		return nil, fmt.Errorf("%w: voice %q has no language code", ErrSynthesis, voice.Name)
	}

	var reqBody synthesizeRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = voice.LanguageCodes[0]
	reqBody.Voice.Name = voice.Name
	reqBody.AudioConfig.AudioEncoding = "MP3"

	var respBody synthesizeResponse
	if err := c.post(ctx, "/v1/text:synthesize", reqBody, &respBody); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	audio, err := base64.StdEncoding.DecodeString(respBody.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed audio content: %v", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio content", ErrSynthesis)
	}
	return audio, nil
}

type listVoicesResponse struct {
	Voices []Voice `json:"voices"`
}

// ListVoices fetches the full voice catalog.
func (c *GoogleClient) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("voice list request returned %s: %s", resp.Status, body)
	}

	var out listVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode voice list: %w", err)
	}
	return out.Voices, nil
}

func (c *GoogleClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request returned %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
