package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpStatusRecorder_RecordsStatus(t *testing.T) {
	underlying := httptest.NewRecorder()
	recorder := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	// handlers only see the http.ResponseWriter interface
	var w http.ResponseWriter = recorder
	w.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, recorder.Status)
	assert.Equal(t, http.StatusTeapot, underlying.Code)
}

func TestHttpStatusRecorder_FlushReachesUnderlyingWriter(t *testing.T) {
	underlying := httptest.NewRecorder()
	recorder := &HttpStatusRecorder{ResponseWriter: underlying, Status: 200}

	// streaming handlers assert http.Flusher on the wrapped writer
	var w http.ResponseWriter = recorder
	flusher, ok := w.(http.Flusher)
	require.True(t, ok)

	flusher.Flush()
	assert.True(t, underlying.Flushed)
}
