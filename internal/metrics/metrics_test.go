package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if httpRequestsTotal == nil || httpRequestDurationSeconds == nil ||
		previewRequestsTotal == nil || pipelineRunsTotal == nil ||
		announceDispatchesTotal == nil || intakeSubmissionsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObservePreview("crawler")
	if val := testutil.ToFloat64(previewRequestsTotal.WithLabelValues("crawler")); val != 1 {
		t.Errorf("Expected previewRequestsTotal{crawler} to be 1, got %f", val)
	}

	ObservePipelineRun("published", 2*time.Second)
	if val := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("published")); val != 1 {
		t.Errorf("Expected pipelineRunsTotal{published} to be 1, got %f", val)
	}

	ObserveAnnounce("zapier", false)
	if val := testutil.ToFloat64(announceDispatchesTotal.WithLabelValues("zapier", "failed")); val != 1 {
		t.Errorf("Expected announceDispatchesTotal{zapier,failed} to be 1, got %f", val)
	}

	ObserveIntake("newsletter", "duplicate")
	if val := testutil.ToFloat64(intakeSubmissionsTotal.WithLabelValues("newsletter", "duplicate")); val != 1 {
		t.Errorf("Expected intakeSubmissionsTotal{newsletter,duplicate} to be 1, got %f", val)
	}
}
