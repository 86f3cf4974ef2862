package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportErrNeverBlocks(t *testing.T) {
	errs := make(chan error, 1)
	reportErr(errs, errors.New("first"))

	// Backlog is full now; a second report must drop, not stall the
	// worker.
	done := make(chan struct{})
	go func() {
		reportErr(errs, errors.New("second"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reportErr blocked on a full backlog")
	}

	assert.EqualError(t, <-errs, "first")
}
