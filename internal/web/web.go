package web

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"playday/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const HomePath = "/home"

// ShellRoutes are the client-side pages served by the single page shell.
var ShellRoutes = []string{
	HomePath,
	"/about",
	"/fields",
	"/my-fields",
	"/games",
	"/my-profile",
	"/signIn",
	"/signUp",
}

const builtinShell = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>PlayDay</title>
</head>
<body>
<div id="root"></div>
<noscript>PlayDay needs JavaScript to run.</noscript>
</body>
</html>
`

const notFoundPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Page not found | PlayDay</title></head>
<body>
<h1>404</h1>
<p>The page you are looking for does not exist. <a href="/home">Back to home</a></p>
</body>
</html>
`

type WebHandler struct {
	shell    []byte
	modified time.Time
	log      *logger.Logger
}

// NewWebHandler serves webRoot/index.html as the shell when webRoot is set,
// and a minimal built-in shell otherwise.
func NewWebHandler(webRoot string, log *logger.Logger) (*WebHandler, error) {
	h := &WebHandler{shell: []byte(builtinShell), log: log}
	if webRoot == "" {
		return h, nil
	}

	path := filepath.Join(webRoot, "index.html")
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("web root has no index.html: %w", err)
	}
	shell, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	h.shell = shell
	h.modified = info.ModTime()
	log.Info("Serving web shell from disk", "path", path)
	return h, nil
}

func (h *WebHandler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, HomePath, http.StatusFound)
}

func (h *WebHandler) Shell(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", h.modified, bytes.NewReader(h.shell))
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if _, err := w.Write([]byte(notFoundPage)); err != nil {
		h.log.Debug("failed to write not found page", "error", err)
	}
}

func (h *WebHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
	for _, path := range ShellRoutes {
		router.GET(path, h.Shell)
	}
	router.NotFound = http.HandlerFunc(h.NotFound)
}
