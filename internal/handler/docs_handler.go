package handler

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"social-scheduler/pkg/apierror"
)

const swaggerCSP = "default-src 'self'; connect-src 'self' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https://validator.swagger.io"

// DocsHandler serves the OpenAPI document, read once from disk, and a Swagger UI page for it.
type DocsHandler struct {
	specPath string

	once sync.Once
	spec []byte
	err  error
}

func NewDocsHandler(specPath string) *DocsHandler {
	return &DocsHandler{specPath: strings.TrimSpace(specPath)}
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := h.load()
	if err != nil {
		writeError(w, apierror.New(apierror.CodeNotFound, "openapi document not available", "", http.StatusNotFound))
		return
	}

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec)
}

func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", swaggerCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerPage))
}

func (h *DocsHandler) load() ([]byte, error) {
	h.once.Do(func() {
		if h.specPath == "" {
			h.err = os.ErrNotExist
			return
		}
		h.spec, h.err = os.ReadFile(h.specPath)
	})
	return h.spec, h.err
}

const swaggerPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Social Scheduler API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
        persistAuthorization: true,
        tryItOutEnabled: false
      });
    </script>
  </body>
</html>`
