package preview

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInjectLiveReload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body><p>hi</p></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frag.html"), []byte("<p>no body</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))

	h := injectLiveReload(http.FileServer(http.Dir(dir)))

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<html><body><p>hi</p>"+scriptTag+"</body></html>", rec.Body.String())

	rec = get("/frag.html")
	require.True(t, strings.HasSuffix(rec.Body.String(), scriptTag))

	rec = get("/style.css")
	require.Equal(t, "body{}", rec.Body.String())

	rec = get("/missing.html")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotContains(t, rec.Body.String(), scriptTag)
}

func TestInjectLiveReload_LargeBodyPassesThrough(t *testing.T) {
	big := "<html><body>" + strings.Repeat("x", 600*1024) + "</body></html>"
	h := injectLiveReload(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(big[:len(big)/2]))
		_, _ = w.Write([]byte(big[len(big)/2:]))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/big.html", nil))
	require.Equal(t, big, rec.Body.String())
}
