package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The validation paths reject before the service is touched, so a nil
// service is enough here.
func TestListVariancesQueryValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/variances", NewVarianceHandler(nil).ListVariances)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "status=bogus"},
		{"unknown source_type", "source_type=bogus"},
		{"negative min_pending_qty", "min_pending_qty=-5"},
		{"non-numeric min_pending_qty", "min_pending_qty=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/variances?"+tt.query, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
