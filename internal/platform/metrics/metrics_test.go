package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIntroductionEventsCounter(t *testing.T) {
	before := testutil.ToFloat64(IntroductionEvents.WithLabelValues(EventIntroductionExpired))
	IntroductionEvents.WithLabelValues(EventIntroductionExpired).Add(3)
	after := testutil.ToFloat64(IntroductionEvents.WithLabelValues(EventIntroductionExpired))
	assert.Equal(t, before+3, after)
}

func TestHandlerServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveQuery(QuerySearch, time.Now(), 7)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carmatch_query_duration_seconds")
}
