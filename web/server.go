package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/status"
	"github.com/mogaika/newgrf_browser/vfs"
)

var ServerContent *vfs.Content
var ServerSettings config.Settings

func NewRouter(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/action/load", HandlerActionLoad).Methods(http.MethodPost)
	r.HandleFunc("/json/content", HandlerAjaxContent)
	r.HandleFunc("/json/modules", HandlerAjaxModules)
	r.HandleFunc("/json/modules/{index:[0-9]+}", HandlerAjaxModule)
	r.HandleFunc("/json/registry", HandlerAjaxRegistry)
	r.HandleFunc("/json/registry/{feature}", HandlerAjaxFeature)
	r.HandleFunc("/json/strings/{id}", HandlerAjaxString)
	r.HandleFunc("/json/townnames", HandlerAjaxTownNames)
	r.HandleFunc("/json/townnames/{grfid}/{style:[0-9]+}/{seed:[0-9]+}", HandlerAjaxTownName)
	r.HandleFunc("/nfo/modules/{index:[0-9]+}", HandlerNfoModule)
	r.HandleFunc("/dump/modules/{index:[0-9]+}", HandlerDumpModule)
	r.HandleFunc("/dump/registry", HandlerDumpRegistry)
	r.HandleFunc("/ws/status", status.Handler)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

// Configure sets the content and settings loads run with.
func Configure(settings config.Settings, content *vfs.Content, list []config.ModuleEntry) {
	ServerContent = content
	ServerSettings = settings
	SetModuleList(list)
}

func StartServer(addr string, webPath string) error {
	var h http.Handler = NewRouter(webPath)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.LoggingHandler(os.Stdout, h)
	h = handlers.CompressHandler(h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
