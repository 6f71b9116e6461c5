package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))

	RecordAPIRequest("GET", "/api/tags/", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordLedgerOperation_Outcome(t *testing.T) {
	okBefore := testutil.ToFloat64(LedgerOperations.WithLabelValues("favorite", "add", "ok"))
	errBefore := testutil.ToFloat64(LedgerOperations.WithLabelValues("favorite", "add", "error"))

	RecordLedgerOperation("favorite", "add", nil)
	RecordLedgerOperation("favorite", "add", errors.New("conflict"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(LedgerOperations.WithLabelValues("favorite", "add", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(LedgerOperations.WithLabelValues("favorite", "add", "error")))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))

	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}
