package main

import (
	"context"
	"flag"
	"log"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/vfs"
	"github.com/mogaika/newgrf_browser/web"
)

func main() {
	var addr, dir, settingsPath, modulesPath, webPath string
	var load bool
	flag.StringVar(&addr, "i", "", "Address of server, overrides settings")
	flag.StringVar(&dir, "dir", "", "Path to content directory with grf files and tar archives, overrides settings")
	flag.StringVar(&settingsPath, "settings", "", "Path to settings yaml")
	flag.StringVar(&modulesPath, "modules", "", "Path to module list ini, overrides settings")
	flag.StringVar(&webPath, "web", "", "Path to web directory with static files in data/")
	flag.BoolVar(&load, "load", true, "Load the module list on start")
	flag.Parse()

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr == "" {
		addr = settings.Listen
	}
	if dir == "" {
		dir = settings.ContentDir
	}
	if modulesPath == "" {
		modulesPath = settings.ModuleList
	}

	list, err := config.ParseModules(modulesPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[main] %d modules in %s, content in %s", len(list), modulesPath, dir)

	web.Configure(settings, vfs.NewContent(vfs.NewDirectoryDriver(dir)), list)
	if load {
		go func() {
			if _, err := web.Reload(context.Background()); err != nil {
				log.Printf("[main] Initial load failed: %v", err)
			}
		}()
	}

	if err := web.StartServer(addr, webPath); err != nil {
		log.Fatal(err)
	}
}
