// ttscli is a command-line client for the TTS gateway. It mirrors the typical
// usage flow: list the available speakers, post a generation request and save
// the returned WAV under a timestamped filename.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultOutputDir = "tts_output"

type generateRequest struct {
	Text       string  `json:"text"`
	VoiceID    string  `json:"voice_id"`
	Language   string  `json:"language,omitempty"`
	SampleRate int     `json:"sr,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
}

type speakersResponse struct {
	AvailableSpeakers []string `json:"available_speakers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8000", "Gateway base URL")
		apiKey  = flag.String("api-key", "", "API key (when the gateway requires one)")
		text    = flag.String("text", "", "Text to synthesize (interactive prompt when empty)")
		voice   = flag.String("voice", "", "Speaker/voice ID (default: first available)")
		lang    = flag.String("lang", "", "Language code (default: gateway's active language)")
		sr      = flag.Int("sr", 0, "Output sample rate (0 = gateway default)")
		speed   = flag.Float64("speed", 0, "Speech speed (0 = gateway default)")
		outDir  = flag.String("out", defaultOutputDir, "Directory to save WAV files into")
		list    = flag.Bool("speakers", false, "List available speakers and exit")
	)
	flag.Parse()

	c := &client{
		baseURL: strings.TrimRight(*baseURL, "/"),
		apiKey:  *apiKey,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}

	if err := run(c, *text, *voice, *lang, *sr, *speed, *outDir, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *client, text, voice, lang string, sr int, speed float64, outDir string, listOnly bool) error {
	ctx := context.Background()

	speakers, err := c.speakers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch speakers: %w", err)
	}

	if listOnly {
		for _, s := range speakers {
			fmt.Println(s)
		}
		return nil
	}

	if voice == "" {
		if len(speakers) == 0 {
			return fmt.Errorf("gateway reports no available speakers")
		}
		voice = speakers[0]
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if text != "" {
		return c.generateAndSave(ctx, generateRequest{
			Text: text, VoiceID: voice, Language: lang, SampleRate: sr, Speed: speed,
		}, outDir)
	}

	// Interactive loop: one synthesis per line, empty line or "q" to quit
	fmt.Printf("Voice: %s — enter text to synthesize (q to quit)\n", voice)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "q" {
			return nil
		}
		err := c.generateAndSave(ctx, generateRequest{
			Text: line, VoiceID: voice, Language: lang, SampleRate: sr, Speed: speed,
		}, outDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func (c *client) speakers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speakers", http.NoBody)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out speakersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode speakers response: %w", err)
	}
	return out.AvailableSpeakers, nil
}

func (c *client) generateAndSave(ctx context.Context, genReq generateRequest, outDir string) error {
	body, err := json.Marshal(genReq)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	filename := filepath.Join(outDir, fmt.Sprintf("tts_%s.wav", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(filename, audio, 0o644); err != nil {
		return fmt.Errorf("failed to save audio: %w", err)
	}

	genTime := resp.Header.Get("Generation-Time-Seconds")
	if genTime == "" {
		genTime = fmt.Sprintf("%.3f", time.Since(start).Seconds())
	}
	fmt.Printf("Saved %s (%d bytes, generated in %ss)\n", filename, len(audio), genTime)
	return nil
}

func (c *client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, parsed.Error)
	}
	return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(raw))
}
