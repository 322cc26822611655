package inputprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"podsafe/internal/util"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// maxInputBytes bounds how much of a file or URL body is read.
const maxInputBytes = 2 << 20

// Result holds the text extracted from an input.
type Result struct {
	Body        string
	ContentType string
	InputType   string // "raw", "file" or "url"
	Source      string // file path or URL; empty for raw input
}

// Processor turns user input into plain description text.
type Processor interface {
	// Process treats input as a file path or http(s) URL when it is one, and as raw text otherwise.
	Process(ctx context.Context, input string) (Result, error)
	// ProcessText treats input strictly as raw text.
	ProcessText(input string) Result
}

// Options configure the default processor.
type Options struct {
	// StripHTML removes markup from raw text as well as from HTML documents.
	StripHTML bool
	// HTTPClient fetches URL inputs; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// New creates the default processor implementation.
func New(opts Options) Processor {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &defaultProcessor{opts: opts}
}

type defaultProcessor struct {
	opts Options
}

func (p *defaultProcessor) Process(ctx context.Context, input string) (Result, error) {
	// --- Detect File ---
	if fi, err := os.Stat(input); err == nil && !fi.IsDir() {
		return p.processFile(input)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) && !isNameError(err) {
		return Result{}, fmt.Errorf("failed to stat input '%s': %w", input, err)
	}

	// --- Detect URL ---
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return p.processURL(ctx, u)
	}

	return p.ProcessText(input), nil
}

func (p *defaultProcessor) ProcessText(input string) Result {
	body := input
	if p.opts.StripHTML && strings.Contains(body, "<") {
		body = StripHTML(body)
	}
	return Result{Body: body, ContentType: "text/plain; charset=utf-8", InputType: "raw"}
}

func (p *defaultProcessor) processFile(path string) (Result, error) {
	log.Debugf("Input '%s' detected as a file.", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Result{}, fmt.Errorf("permission denied reading file '%s': %w", path, err)
		}
		return Result{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	if len(data) > maxInputBytes {
		data = data[:maxInputBytes]
	}
	if util.IsLikelyBinary(data) {
		return Result{}, fmt.Errorf("file '%s' looks like binary data", path)
	}

	body, err := util.CleanText(data, path)
	if err != nil {
		return Result{}, err
	}
	ct := http.DetectContentType(data)
	return Result{Body: p.normalize(body, ct), ContentType: ct, InputType: "file", Source: path}, nil
}

func (p *defaultProcessor) processURL(ctx context.Context, u *url.URL) (Result, error) {
	log.Debugf("Input '%s' detected as a URL.", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request for URL '%s': %w", u, err)
	}
	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch URL '%s': %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("failed to fetch URL '%s': status code %d %s", u, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInputBytes))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body from URL '%s': %w", u, err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	body, err := util.CleanText(data, u.String())
	if err != nil {
		return Result{}, err
	}
	return Result{Body: p.normalize(body, ct), ContentType: ct, InputType: "url", Source: u.String()}, nil
}

func (p *defaultProcessor) normalize(body, contentType string) string {
	if strings.Contains(contentType, "html") || (p.opts.StripHTML && strings.Contains(body, "<")) {
		return StripHTML(body)
	}
	return body
}

// isNameError reports stat failures caused by input that cannot be a path at all,
// such as a long pasted description.
func isNameError(err error) bool {
	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	msg := pathErr.Err.Error()
	return strings.Contains(msg, "file name too long") || strings.Contains(msg, "invalid argument") || strings.Contains(msg, "not a directory")
}

// skippedElements hold no readable description text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "head": true, "noscript": true, "template": true,
}

// StripHTML returns the visible text of an HTML fragment or document, with
// element boundaries turned into spaces.
func StripHTML(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] {
				skipDepth++
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
			sb.WriteByte(' ')
		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

var _ Processor = (*defaultProcessor)(nil)
