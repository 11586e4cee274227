package web_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rwool/visitor-counter/web"
)

func TestHandler(t *testing.T) {
	t.Parallel()
	h := web.Handler()

	for path, want := range map[string]string{
		"/":                   `id="visitor-counter-value"`,
		"/visitor_counter.js": "/api/increase-visitor-counter",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, 200, rec.Code, "Should serve %s.", path)
		assert.Contains(t, rec.Body.String(), want)
	}
}
