package observer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("observer bug") }
func (panickingObserver) GetObserverName() string { return "panicking" }

func TestMetricsObserver_Counts(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)

	ctx := context.Background()
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: AnalysisStarted})
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: AnalysisCompleted, Success: true, BodyType: "pear", Source: "manual_input", ProcessingTime: 10 * time.Millisecond})
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: AnalysisStarted})
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: AnalysisFailed, ErrorType: "missing_fields"})
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: ImageFetched})
	publisher.NotifyObservers(ctx, AnalysisEvent{EventType: ImageFetchFailed})
	publisher.Flush()

	m := metrics.GetMetrics()
	if m.TotalAnalyses != 2 || m.SuccessfulAnalyses != 1 || m.FailedAnalyses != 1 {
		t.Errorf("Unexpected analysis counters: %+v", m)
	}
	if m.ImagesFetched != 1 || m.ImageFetchFailures != 1 {
		t.Errorf("Unexpected fetch counters: %+v", m)
	}
	if m.BodyTypeDistribution["pear"] != 1 {
		t.Errorf("Expected one pear, got %v", m.BodyTypeDistribution)
	}
	if m.SourceDistribution["manual_input"] != 1 {
		t.Errorf("Expected one manual input, got %v", m.SourceDistribution)
	}
	if m.ErrorDistribution["missing_fields"] != 1 {
		t.Errorf("Expected one missing_fields failure, got %v", m.ErrorDistribution)
	}
	if m.AvgProcessingTimeMs != 10 {
		t.Errorf("Expected 10ms average, got %f", m.AvgProcessingTimeMs)
	}

	m.BodyTypeDistribution["pear"] = 100
	if metrics.GetMetrics().BodyTypeDistribution["pear"] != 1 {
		t.Error("Expected GetMetrics to return copies")
	}
}

func TestEventPublisher_PanicIsolated(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(panickingObserver{})
	publisher.Subscribe(metrics)

	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	publisher.Flush()

	if metrics.GetMetrics().TotalAnalyses != 1 {
		t.Error("Expected healthy observer to still receive the event")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	metrics := NewMetricsObserver()
	publisher := NewEventPublisher()
	publisher.Subscribe(metrics)
	publisher.Unsubscribe(metrics)

	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	publisher.Flush()

	if metrics.GetMetrics().TotalAnalyses != 0 {
		t.Error("Expected unsubscribed observer to receive nothing")
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	obs := NewLoggingObserver(l)
	obs.OnEvent(context.Background(), AnalysisEvent{
		EventType:    AnalysisFailed,
		RequestID:    "req-1",
		ErrorType:    "pose_not_detected",
		ErrorMessage: "no person",
	})

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"error_type":"pose_not_detected"`, "Body analysis failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %s, got %s", want, out)
		}
	}
}
