package web

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf/feature"
	"github.com/mogaika/newgrf_browser/grf/loader"
	"github.com/mogaika/newgrf_browser/nfo"
	"github.com/mogaika/newgrf_browser/vfs"
	"github.com/mogaika/newgrf_browser/webutils"
)

func HandlerActionLoad(w http.ResponseWriter, r *http.Request) {
	stateLock.RLock()
	busy := loading
	stateLock.RUnlock()
	if busy {
		webutils.WriteErrorStatus(w, http.StatusConflict, ErrLoading)
		return
	}
	go func() {
		if _, err := Reload(context.Background()); err != nil {
			log.Printf("[web] Load failed: %v", err)
		}
	}()
	webutils.WriteJson(w, map[string]bool{"started": true})
}

func HandlerAjaxContent(w http.ResponseWriter, r *http.Request) {
	if files, err := ServerContent.Scan(); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

// result writes a not found error when nothing is loaded.
func result(w http.ResponseWriter) *loader.Result {
	res, err := CurrentResult()
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, err)
		return nil
	}
	return res
}

type moduleSummary struct {
	Index   int
	Path    string
	GRFID   string
	Name    string
	Version uint8
	Status  loader.Status
	Error   *loader.ModuleError `json:",omitempty"`
}

func HandlerAjaxModules(w http.ResponseWriter, r *http.Request) {
	res := result(w)
	if res == nil {
		return
	}
	list := make([]moduleSummary, 0, len(res.Modules))
	for i, m := range res.Modules {
		list = append(list, moduleSummary{
			Index:   i,
			Path:    m.Path,
			GRFID:   loader.GRFIDString(m.GRFID),
			Name:    m.Name,
			Version: m.Version,
			Status:  m.Status,
			Error:   m.Error,
		})
	}
	webutils.WriteJson(w, list)
}

func module(w http.ResponseWriter, r *http.Request) *loader.Module {
	res := result(w)
	if res == nil {
		return nil
	}
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	if index >= len(res.Modules) {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("No module %d", index))
		return nil
	}
	return res.Modules[index]
}

func HandlerAjaxModule(w http.ResponseWriter, r *http.Request) {
	if m := module(w, r); m != nil {
		webutils.WriteJson(w, m)
	}
}

func HandlerNfoModule(w http.ResponseWriter, r *http.Request) {
	m := module(w, r)
	if m == nil {
		return
	}
	c := m.Container()
	if c == nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("Module %s was not read", m.Path))
		return
	}
	webutils.WriteText(w, nfo.Render(nfo.Disassemble(c)))
}

func HandlerDumpModule(w http.ResponseWriter, r *http.Request) {
	m := module(w, r)
	if m == nil {
		return
	}
	f, err := ServerContent.Lookup(m.Path)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	reader, err := vfs.OpenFileAndGetReader(f, true)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, reader, f.Name())
}

func HandlerAjaxRegistry(w http.ResponseWriter, r *http.Request) {
	if res := result(w); res != nil {
		webutils.WriteJson(w, res.Registry.Summary())
	}
}

func HandlerAjaxFeature(w http.ResponseWriter, r *http.Request) {
	res := result(w)
	if res == nil {
		return
	}
	name := mux.Vars(r)["feature"]
	f, ok := feature.ByName(name)
	if !ok {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("Unknown feature %q", name))
		return
	}
	list, ok := res.Registry.Listing(f)
	if !ok {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("Feature %v has no registry", f))
		return
	}
	webutils.WriteJson(w, list)
}

func HandlerAjaxString(w http.ResponseWriter, r *http.Request) {
	res := result(w)
	if res == nil {
		return
	}
	param := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(param, 0, 32)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, errors.Errorf("param '%s' is not integer", param))
		return
	}
	s := res.Strings.Get(uint32(id))
	if s == nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("No string 0x%x", id))
		return
	}
	webutils.WriteJson(w, s)
}

func HandlerAjaxTownNames(w http.ResponseWriter, r *http.Request) {
	if res := result(w); res != nil {
		webutils.WriteJson(w, res.TownNames.Generators())
	}
}

func HandlerAjaxTownName(w http.ResponseWriter, r *http.Request) {
	res := result(w)
	if res == nil {
		return
	}
	vars := mux.Vars(r)
	grfid, err := loader.ParseGRFID(vars["grfid"])
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	style, _ := strconv.Atoi(vars["style"])
	seed, _ := strconv.ParseUint(vars["seed"], 10, 32)

	gen := res.TownNames.Get(grfid, false)
	if gen == nil || style >= len(gen.Styles) {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("No town name style %d of %s", style, vars["grfid"]))
		return
	}
	st := gen.Styles[style]
	webutils.WriteJson(w, map[string]interface{}{
		"style": res.Strings.Text(st.NameID),
		"name":  gen.Generate(st.ID, uint32(seed)),
	})
}

func HandlerDumpRegistry(w http.ResponseWriter, r *http.Request) {
	if res := result(w); res != nil {
		webutils.WriteZstd(w, res.Registry, "registry")
	}
}
