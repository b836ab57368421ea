package dashboard

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var viewsFS embed.FS

// NewViewEngine loads the embedded dashboard templates.
func NewViewEngine() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("join", strings.Join)
	engine.AddFunc("score", func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	})
	engine.AddFunc("inc", func(i int) int {
		return i + 1
	})
	return engine
}
