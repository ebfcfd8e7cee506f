package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ConversionEvent describes one step of an OCR or handwriting run
type ConversionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id,omitempty"`
	Source         string                 `json:"source,omitempty"`
	Strategy       string                 `json:"strategy,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of conversion event
type EventType string

const (
	ExtractionStarted   EventType = "extraction_started"
	ExtractionCompleted EventType = "extraction_completed"
	ExtractionFailed    EventType = "extraction_failed"
	ImageFetched        EventType = "image_fetched"
	ImageFetchFailed    EventType = "image_fetch_failed"
	HandwritingRendered EventType = "handwriting_rendered"
	HandwritingFailed   EventType = "handwriting_failed"
	ImageArchived       EventType = "image_archived"
	ArchiveFailed       EventType = "archive_failed"
)

// Observer receives conversion events
type Observer interface {
	OnEvent(ctx context.Context, event ConversionEvent)
	GetObserverName() string
}

// Subject publishes conversion events
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ConversionEvent)
}

// LoggingObserver writes every event to logrus
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event ConversionEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.Strategy != "" {
		fields["strategy"] = event.Strategy
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ExtractionStarted:
		entry.Debug("Text extraction started")
	case ExtractionCompleted:
		entry.Info("Text extraction completed")
	case ExtractionFailed:
		entry.Error("Text extraction failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case HandwritingRendered:
		entry.Info("Handwriting rendered")
	case HandwritingFailed:
		entry.Error("Handwriting rendering failed")
	case ImageArchived:
		entry.Debug("Rendered image archived")
	case ArchiveFailed:
		entry.Warn("Archiving rendered image failed")
	default:
		entry.Info("Conversion event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver keeps in-process counters served by /metrics
type MetricsObserver struct {
	mu                     sync.RWMutex
	extractions            int64
	extractionsSucceeded   int64
	extractionsFailed      int64
	extractionTime         time.Duration
	wordsDetected          int64
	fetchFailures          int64
	handwritingRendered    int64
	handwritingFailed      int64
	handwritingTime        time.Duration
	linesRendered          int64
	archived               int64
	archiveFailures        int64
	extractionsPerStrategy map[string]int64
}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{extractionsPerStrategy: make(map[string]int64)}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event ConversionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ExtractionStarted:
		o.extractions++
		if event.Strategy != "" {
			o.extractionsPerStrategy[event.Strategy]++
		}
	case ExtractionCompleted:
		o.extractionsSucceeded++
		o.extractionTime += event.ProcessingTime
		o.wordsDetected += metadataInt(event.Metadata, "word_count")
	case ExtractionFailed:
		o.extractionsFailed++
	case ImageFetchFailed:
		o.fetchFailures++
	case HandwritingRendered:
		o.handwritingRendered++
		o.handwritingTime += event.ProcessingTime
		o.linesRendered += metadataInt(event.Metadata, "line_count")
	case HandwritingFailed:
		o.handwritingFailed++
	case ImageArchived:
		o.archived++
	case ArchiveFailed:
		o.archiveFailures++
	}
}

func metadataInt(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a snapshot of the counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgExtraction := time.Duration(0)
	if o.extractionsSucceeded > 0 {
		avgExtraction = o.extractionTime / time.Duration(o.extractionsSucceeded)
	}
	avgRender := time.Duration(0)
	if o.handwritingRendered > 0 {
		avgRender = o.handwritingTime / time.Duration(o.handwritingRendered)
	}

	perStrategy := make(map[string]int64, len(o.extractionsPerStrategy))
	for k, v := range o.extractionsPerStrategy {
		perStrategy[k] = v
	}

	return map[string]interface{}{
		"total_extractions":       o.extractions,
		"successful_extractions":  o.extractionsSucceeded,
		"failed_extractions":      o.extractionsFailed,
		"avg_extraction_time_ms":  avgExtraction.Milliseconds(),
		"words_detected":          o.wordsDetected,
		"image_fetch_failures":    o.fetchFailures,
		"extractions_by_strategy": perStrategy,
		"handwriting_rendered":    o.handwritingRendered,
		"handwriting_failed":      o.handwritingFailed,
		"avg_render_time_ms":      avgRender.Milliseconds(),
		"lines_rendered":          o.linesRendered,
		"images_archived":         o.archived,
		"archive_failures":        o.archiveFailures,
	}
}

// EventPublisher fans events out to observers
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to each observer on its own goroutine.
// The request context is detached so observers outlive the request.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ConversionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
