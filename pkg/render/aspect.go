package render

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

const (
	TallClass = "thumb-tall"
	// Images narrower than this width:height ratio are laid out as portraits.
	tallRatio = 0.9

	defaultQueueSize = 64
)

// ClassFor returns TallClass for portrait dimensions and "" otherwise.
func ClassFor(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if float64(width)/float64(height) < tallRatio {
		return TallClass
	}
	return ""
}

// AspectClassifier works out thumbnail layout classes in the background. Class
// never waits for an image: the first render of a new URL gets no class, and
// later renders pick up the result once a worker has fetched and decoded it.
type AspectClassifier struct {
	client  *http.Client
	workers int
	queue   chan string

	mu      sync.RWMutex
	classes map[string]string
	pending map[string]struct{}

	wg sync.WaitGroup
}

func NewAspectClassifier(client *http.Client, workers int) *AspectClassifier {
	if client == nil {
		client = http.DefaultClient
	}
	if workers <= 0 {
		workers = 1
	}
	return &AspectClassifier{
		client:  client,
		workers: workers,
		queue:   make(chan string, defaultQueueSize),
		classes: make(map[string]string),
		pending: make(map[string]struct{}),
	}
}

// Start launches the workers. They exit when ctx is done.
func (c *AspectClassifier) Start(ctx context.Context) {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case url := <-c.queue:
					_, err := c.Classify(ctx, url)
					c.mu.Lock()
					if err != nil {
						log.Debugf("aspect classifier: %v", err)
						c.classes[url] = ""
					}
					delete(c.pending, url)
					c.mu.Unlock()
				}
			}
		}()
	}
}

// Wait blocks until the workers started by Start have exited.
func (c *AspectClassifier) Wait() {
	c.wg.Wait()
}

// Class returns the known class for url, queueing it for classification the
// first time it is seen. A full queue drops the request; the URL is retried on
// a later render.
func (c *AspectClassifier) Class(url string) string {
	if url == "" {
		return ""
	}
	c.mu.RLock()
	class, known := c.classes[url]
	_, queued := c.pending[url]
	c.mu.RUnlock()
	if known || queued {
		return class
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, queued := c.pending[url]; queued {
		return ""
	}
	select {
	case c.queue <- url:
		c.pending[url] = struct{}{}
	default:
	}
	return ""
}

// Classify fetches and decodes the image synchronously and remembers the result.
func (c *AspectClassifier) Classify(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch image %s: HTTP %d", url, resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image %s: %w", url, err)
	}
	bounds := img.Bounds()
	class := ClassFor(bounds.Dx(), bounds.Dy())

	c.mu.Lock()
	c.classes[url] = class
	c.mu.Unlock()
	return class, nil
}
