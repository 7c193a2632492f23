package main

import (
	"context"
	"flag"
	"log"
	"runtime"

	"mini-terrain/internal/config"
	"mini-terrain/internal/game"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	// GL calls must stay on the main OS thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (hot-reloaded)")
	seed := flag.Int64("seed", 0, "terrain seed, overrides the config file")
	renderDistance := flag.Int("render-distance", 0, "chunk rings streamed around the camera, overrides the config file")
	heightmap := flag.String("heightmap", "", "PNG, TIFF or BMP heightmap, overrides the config file")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)
	defer closer.Close()

	if *configPath != "" {
		if err := config.LoadAndApply(*configPath); err != nil {
			closer.Fatalln("config:", err)
		}
		if err := config.Watch(ctx, *configPath, nil); err != nil {
			log.Printf("config: hot reload disabled: %v", err)
		}
	}
	if *seed != 0 {
		config.SetSeed(*seed)
	}
	if *renderDistance > 0 {
		config.SetRenderDistance(*renderDistance)
	}
	if *heightmap != "" {
		wg := config.WorldGen()
		wg.Heightmap = *heightmap
		config.SetWorldGen(wg)
	}
	log.Printf("terrain: seed %d, render distance %d", config.GetSeed(), config.GetRenderDistance())

	src, err := game.NewHeightSource(config.WorldGen())
	if err != nil {
		closer.Fatalln(err)
	}

	if err := glfw.Init(); err != nil {
		closer.Fatalln(err)
	}
	window, err := game.SetupWindow(*width, *height)
	if err != nil {
		closer.Fatalln(err)
	}

	app, err := game.NewApp(window, src)
	if err != nil {
		closer.Fatalln(err)
	}
	app.Run()
	app.Close()
	glfw.Terminate()
}
