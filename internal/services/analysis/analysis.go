// Package analysis calls an external multimodal AI endpoint to suggest a
// diagnosis for an uploaded skin image.
//
// The adapter trades transparency for availability: almost every failure mode
// (missing API key, content-safety refusal, malformed reply, network error)
// is swallowed into a fixed fallback envelope so callers always receive a
// well-formed record. The single exception is an upstream rate limit, which
// is surfaced as ErrRateLimited so the endpoint can answer 429.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrRateLimited marks an upstream 429 reply.
var ErrRateLimited = errors.New("analysis: upstream rate limit exceeded")

const prompt = `You are a dermatologist AI. Analyze the image and provide a JSON response with the following fields:
- condition: (string) The name of the skin condition (e.g., Eczema, Psoriasis, Acne, Burn).
- confidence: (number) Confidence score between 0 and 100.
- severity: (string) One of ["MINOR", "MODERATE", "URGENT"].
- steps: (list of strings) First aid or care steps.
- warnings: (list of strings) Warning signs to watch for.

Return ONLY raw JSON, no markdown formatting.`

// Envelope is the tolerant shape of the remote reply. The upstream model does
// not always use the exact field names it was asked for, so aliases are
// accepted and numbers may arrive quoted. Normalization into stored fields is
// the caller's job.
type Envelope struct {
	Condition  string      `json:"condition"`
	Diagnosis  string      `json:"diagnosis"`
	Confidence FlexFloat   `json:"confidence"`
	Score      FlexFloat   `json:"score"`
	Severity   string      `json:"severity"`
	Steps      FlexStrings `json:"steps"`
	Advice     FlexStrings `json:"advice"`
	Warnings   FlexStrings `json:"warnings"`
}

// FlexFloat decodes a JSON number or a quoted number.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// FlexStrings decodes a JSON array of anything or a bare scalar into a string
// list.
type FlexStrings []string

func (s *FlexStrings) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, fmt.Sprint(item))
		}
		*s = out
		return nil
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}
	if scalar == nil {
		*s = nil
		return nil
	}
	*s = []string{fmt.Sprint(scalar)}
	return nil
}

// Fallback is the fixed degraded envelope returned when analysis fails.
func Fallback(cause error) Envelope {
	return Envelope{
		Condition:  "Analysis unavailable",
		Confidence: 0,
		Severity:   "MINOR",
		Steps: FlexStrings{
			"Retry with a clearer, well-lit photo",
			"Consult a doctor if symptoms persist",
		},
		Warnings: FlexStrings{cause.Error()},
	}
}

// Client talks to a Gemini-class generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds an analysis client. The call is made inline during
// request handling and intentionally carries no timeout or retry; the
// external service is the dominant latency source.
func NewClient(apiKey, model, baseURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request/response shapes for the generateContent wire format.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Analyze loads the image at localPath, sends it with the fixed prompt and
// parses the JSON envelope out of the reply. It never panics or propagates
// ordinary failures; see the package comment for the error contract.
func (c *Client) Analyze(ctx context.Context, localPath string) (Envelope, error) {
	if c.apiKey == "" {
		return Fallback(errors.New("analysis API key is not set")), nil
	}

	imageBytes, err := os.ReadFile(localPath)
	if err != nil {
		return Fallback(fmt.Errorf("reading image: %v", err)), nil
	}

	mimeType := mime.TypeByExtension(filepath.Ext(localPath))
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageBytes),
				}},
			},
		}},
	})
	if err != nil {
		return Fallback(fmt.Errorf("encoding request: %v", err)), nil
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fallback(fmt.Errorf("building request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Fallback(fmt.Errorf("calling analysis service: %v", err)), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fallback(fmt.Errorf("reading analysis reply: %v", err)), nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		cause := fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(raw)))
		return Fallback(cause), cause
	}
	if resp.StatusCode != http.StatusOK {
		return Fallback(fmt.Errorf("analysis service returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))), nil
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return Fallback(fmt.Errorf("decoding analysis reply: %v", err)), nil
	}

	if len(gr.Candidates) == 0 {
		if reason := gr.PromptFeedback.BlockReason; reason != "" {
			return Fallback(fmt.Errorf("analysis request blocked: %s", reason)), nil
		}
		return Fallback(errors.New("analysis reply contained no candidates")), nil
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(stripFences(text.String())), &env); err != nil {
		return Fallback(fmt.Errorf("parsing analysis JSON: %v", err)), nil
	}

	return env, nil
}

// stripFences removes optional markdown code-fence wrapping from the reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	} else if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}
