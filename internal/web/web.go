package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//go:embed all:html
var webRoot embed.FS

var pages = template.Must(template.ParseFS(webRoot, "html/*.html"))

// RegisterStaticFiles wires the embedded assets into the gin engine at /static.
func RegisterStaticFiles(engine *gin.Engine) {
	sub, err := fs.Sub(webRoot, "html/static")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get static sub-filesystem")
	}
	engine.StaticFS("/static", http.FS(sub))
	log.Debug().Msg("serving embedded static files at /static")
}

// RenderPage executes the named embedded template into w.
func RenderPage(w io.Writer, name string, data any) error {
	return pages.ExecuteTemplate(w, name, data)
}
