package main

import (
	"flag"
	"log"

	"postlift/ui"
)

func main() {
	port := flag.String("port", "8090", "port to listen on")
	seed := flag.Int64("seed", 0, "override the synthetic campaign seed")
	flag.Parse()

	demo, err := ui.NewApp(ui.AppConfig{Port: *port, Seed: *seed})
	if err != nil {
		log.Fatal("Failed to create demo app:", err)
	}

	log.Printf("Starting demo on http://localhost:%s", *port)
	log.Fatal(demo.Start(ui.AppConfig{Port: *port}))
}
