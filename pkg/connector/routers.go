package connector

import (
	"github.com/docbridge/editor-connector/pkg/connector/handler"
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
)

var apiVersionHeader = fizz.Header(
	"API-Version",
	"The API version of the response",
	"",
)

// NewRouter wires the connector routes. The editor-config surface is
// documented through fizz; the vendor webhook and download endpoints are
// plain gin handlers because they deal in raw JWT bodies and binary
// streams.
func NewRouter(
	apiVersion string,
	callback *handler.CallbackController,
	download *handler.DownloadController,
	editor *handler.EditorController,
) *fizz.Fizz {
	g := gin.Default()
	g.Use(APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	info := &openapi.Info{
		Title:       "Document editor connector API",
		Description: "Editing-session protocol between the CMS and the document editing service",
		Version:     apiVersion,
	}

	root := f.Group("/v1", "Connector", "Editing session routes")

	root.GET("/media/:id/editor",
		[]fizz.OperationOption{
			fizz.Summary("Editor configuration for a media entity"),
			apiVersionHeader,
		},
		tonic.Handler(editor.GetEditorConfig, 200),
	)

	g.POST("/v1/callback/:key", callback.Callback)
	g.GET("/v1/download/:key", download.Download)

	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
