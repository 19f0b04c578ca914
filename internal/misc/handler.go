package misc

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/2beens/serjblog/internal/web"
	"github.com/2beens/serjblog/pkg"
)

type Handler struct {
	renderer    *web.Renderer
	versionInfo string
}

func NewHandler(renderer *web.Renderer, versionInfo string) *Handler {
	return &Handler{
		renderer:    renderer,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/about", handler.handleAbout).Methods("GET").Name("about")
	router.HandleFunc("/contact", handler.handleContact).Methods("GET").Name("contact")
	router.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
}

func (handler *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, "about", nil)
}

func (handler *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, "contact", nil)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
