package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type chanObserver struct {
	name   string
	events chan ConversionEvent
}

func (o *chanObserver) OnEvent(ctx context.Context, event ConversionEvent) {
	if ctx.Err() != nil {
		return
	}
	o.events <- event
}

func (o *chanObserver) GetObserverName() string { return o.name }

type panicObserver struct{}

func (panicObserver) OnEvent(context.Context, ConversionEvent) { panic("observer bug") }
func (panicObserver) GetObserverName() string                  { return "panicky" }

func TestEventPublisher_Notify(t *testing.T) {
	p := NewEventPublisher()
	obs := &chanObserver{name: "chan", events: make(chan ConversionEvent, 1)}
	p.Subscribe(panicObserver{})
	p.Subscribe(obs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.NotifyObservers(ctx, ConversionEvent{EventType: ExtractionStarted})

	select {
	case ev := <-obs.events:
		if ev.EventType != ExtractionStarted {
			t.Errorf("event type = %s", ev.EventType)
		}
		if ev.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("observer not notified")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	p := NewEventPublisher()
	obs := &chanObserver{name: "chan", events: make(chan ConversionEvent, 1)}
	p.Subscribe(obs)
	p.Unsubscribe(obs)

	p.NotifyObservers(context.Background(), ConversionEvent{EventType: ExtractionStarted})

	select {
	case <-obs.events:
		t.Fatal("unsubscribed observer was notified")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	events := []ConversionEvent{
		{EventType: ExtractionStarted, Strategy: "layout"},
		{EventType: ExtractionCompleted, ProcessingTime: 100 * time.Millisecond, Metadata: map[string]interface{}{"word_count": 7}},
		{EventType: ExtractionStarted, Strategy: "plain"},
		{EventType: ExtractionFailed},
		{EventType: ImageFetchFailed},
		{EventType: HandwritingRendered, ProcessingTime: 20 * time.Millisecond, Metadata: map[string]interface{}{"line_count": 2}},
		{EventType: HandwritingFailed},
		{EventType: ImageArchived},
		{EventType: ArchiveFailed},
	}
	for _, ev := range events {
		m.OnEvent(ctx, ev)
	}

	got := m.GetMetrics()
	want := map[string]int64{
		"total_extractions":      2,
		"successful_extractions": 1,
		"failed_extractions":     1,
		"avg_extraction_time_ms": 100,
		"words_detected":         7,
		"image_fetch_failures":   1,
		"handwriting_rendered":   1,
		"handwriting_failed":     1,
		"avg_render_time_ms":     20,
		"lines_rendered":         2,
		"images_archived":        1,
		"archive_failures":       1,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %d", k, got[k], v)
		}
	}

	byStrategy := got["extractions_by_strategy"].(map[string]int64)
	if byStrategy["layout"] != 1 || byStrategy["plain"] != 1 {
		t.Errorf("extractions_by_strategy = %v", byStrategy)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	obs := NewLoggingObserver(l)
	obs.OnEvent(context.Background(), ConversionEvent{
		EventType:      ExtractionFailed,
		RequestID:      "req-1",
		Strategy:       "layout",
		ProcessingTime: 1500 * time.Millisecond,
		ErrorMessage:   "engine down",
		Metadata:       map[string]interface{}{"mime": "image/png"},
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	checks := map[string]interface{}{
		"level":              "error",
		"request_id":         "req-1",
		"strategy":           "layout",
		"error":              "engine down",
		"mime":               "image/png",
		"processing_time_ms": float64(1500),
	}
	for k, v := range checks {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}
