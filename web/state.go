package web

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf/loader"
	"github.com/mogaika/newgrf_browser/status"
)

var (
	stateLock  sync.RWMutex
	moduleList []config.ModuleEntry
	lastResult *loader.Result
	loading    bool
)

var ErrLoading = errors.New("Load already in progress")
var ErrNotLoaded = errors.New("Nothing loaded yet")

func SetModuleList(list []config.ModuleEntry) {
	stateLock.Lock()
	defer stateLock.Unlock()
	moduleList = list
}

func CurrentResult() (*loader.Result, error) {
	stateLock.RLock()
	defer stateLock.RUnlock()
	if lastResult == nil {
		return nil, ErrNotLoaded
	}
	return lastResult, nil
}

// Reload loads the module list from the content directory and publishes
// the result. Progress goes to the status stream.
func Reload(ctx context.Context) (*loader.Result, error) {
	stateLock.Lock()
	if loading {
		stateLock.Unlock()
		return nil, ErrLoading
	}
	loading = true
	list := moduleList
	stateLock.Unlock()

	defer func() {
		stateLock.Lock()
		loading = false
		stateLock.Unlock()
	}()

	l := loader.New(ServerSettings, ServerContent, loader.NewLogger(os.Stdout, ServerSettings.DebugLevel))
	l.OnProgress(func(p loader.Progress) {
		status.SessionProgress(p.Session, p.Fraction(), "%v: %s", p.Stage, p.Path)
	})
	res, err := l.Load(ctx, list)
	if err != nil {
		status.Error("Load failed: %v", err)
		return nil, err
	}

	active := 0
	for _, m := range res.Modules {
		if m.Status == loader.StatusActivated {
			active++
		}
	}
	status.SessionProgress(res.Session, 1, "Loaded %d of %d modules", active, len(res.Modules))

	stateLock.Lock()
	lastResult = res
	stateLock.Unlock()
	return res, nil
}
