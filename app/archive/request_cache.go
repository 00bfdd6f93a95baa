package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var requestExtensions = []string{".yml", ".yaml"}

// RequestCache holds the named requests read from a directory of YAML files
type RequestCache struct {
	requestsDir string
	cache       map[string]*Request
	mu          sync.RWMutex
}

func NewRequestCache(requestsDir string) *RequestCache {
	return &RequestCache{
		requestsDir: requestsDir,
		cache:       make(map[string]*Request),
	}
}

func (rc *RequestCache) Run() error {
	if rc.requestsDir == "" {
		return nil
	}
	if _, err := os.Stat(rc.requestsDir); os.IsNotExist(err) {
		return nil
	}

	for _, ext := range requestExtensions {
		files, err := filepath.Glob(filepath.Join(rc.requestsDir, "*"+ext))
		if err != nil {
			return fmt.Errorf("failed to find %s files: %w", ext, err)
		}

		for _, file := range files {
			name := strings.TrimSuffix(filepath.Base(file), ext)

			request, err := rc.loadFile(name, file)
			if err != nil {
				return fmt.Errorf("error loading %s: %w", file, err)
			}

			slog.Debug("Request loaded", "request", name, "type", request.Type, "format", request.Format, "limit", request.Limit)
		}
	}

	return nil
}

// LoadRequest reads the request file called name from the requests
// directory, trying each supported extension in turn
func (rc *RequestCache) LoadRequest(name string) (*Request, error) {
	for _, ext := range requestExtensions {
		file := filepath.Join(rc.requestsDir, name+ext)
		if _, err := os.Stat(file); err == nil {
			return rc.loadFile(name, file)
		}
	}
	return nil, fmt.Errorf("request file for '%s' not found in %s", name, rc.requestsDir)
}

func (rc *RequestCache) loadFile(name, file string) (*Request, error) {
	request, err := rc.parseRequest(file)
	if err != nil {
		return nil, err
	}

	request.Name = name

	if err := rc.validateRequest(request); err != nil {
		return nil, fmt.Errorf("invalid request %s: %w", file, err)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cache[request.Name] = request

	return request, nil
}

func (rc *RequestCache) GetRequest(name string) (*Request, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	request, ok := rc.cache[name]
	if !ok {
		return nil, fmt.Errorf("request with name '%s' not found", name)
	}
	return request, nil
}

func (rc *RequestCache) GetRequests() map[string]*Request {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	requestsCopy := make(map[string]*Request, len(rc.cache))
	for k, v := range rc.cache {
		requestsCopy[k] = v
	}
	return requestsCopy
}

// Names returns the loaded request names in lexical order
func (rc *RequestCache) Names() []string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	names := make([]string, 0, len(rc.cache))
	for name := range rc.cache {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (rc *RequestCache) GetRequestCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.cache)
}

func (rc *RequestCache) parseRequest(file string) (*Request, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	request := DefaultRequest()
	if err := yaml.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &request, nil
}

// validateRequest rejects nothing the renderer can cope with. An unknown type
// renders as an empty archive, so it is only reported.
func (rc *RequestCache) validateRequest(request *Request) error {
	if request == nil {
		return fmt.Errorf("request is nil")
	}

	if request.Type != "" && !KnownType(request.Type) {
		slog.Warn("Unknown archive type, request will render nothing", "request", request.Name, "type", request.Type)
	}

	switch request.Format {
	case "", FormatHTML, FormatLink, FormatOption, FormatCustom:
	default:
		slog.Warn("Unknown archive format, rendering unwrapped links", "request", request.Name, "format", request.Format)
	}

	if verbs := UnsupportedImageVerbs(request.Image); len(verbs) > 0 {
		slog.Warn("Image template has directives that will be copied verbatim", "request", request.Name, "verbs", verbs)
	}

	return nil
}
