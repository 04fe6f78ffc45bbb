package view

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// PrefetchFactory builds surfaces that warm a tab's URL over HTTP instead of
// driving a real rendering process. It stands in for the platform renderer
// behind the same Surface contract: loads run asynchronously and failures
// come back through the view's FaultSink.
type PrefetchFactory struct {
	client *resty.Client
}

// NewPrefetchFactory creates a prefetching surface factory.
func NewPrefetchFactory() *PrefetchFactory {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "workspace-os-prefetch/1.0")

	return &PrefetchFactory{client: client}
}

// Create builds a surface bound to the workspace partition.
func (f *PrefetchFactory) Create(partition string, sink FaultSink) (Surface, error) {
	return &prefetchSurface{
		client:    f.client,
		partition: partition,
		sink:      sink,
		detached:  make(chan struct{}),
	}, nil
}

type prefetchSurface struct {
	client    *resty.Client
	partition string
	sink      FaultSink

	once     sync.Once
	detached chan struct{}
}

// Load fetches url in the background. A transport error or HTTP 5xx reports
// a load failure; completion is never awaited by the caller.
func (s *prefetchSurface) Load(url string) error {
	go func() {
		resp, err := s.client.R().Get(url)

		select {
		case <-s.detached:
			return
		default:
		}

		if err != nil {
			s.sink.LoadFailed(err.Error())
			return
		}
		if resp.StatusCode() >= 500 {
			s.sink.LoadFailed(resp.Status())
		}
	}()
	return nil
}

func (s *prefetchSurface) Detach() {
	s.once.Do(func() { close(s.detached) })
}

func (s *prefetchSurface) OpenDevTools() {
	// Nothing to open for a prefetch surface.
}
