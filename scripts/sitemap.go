//go:build ignore

package main

import (
	"flag"
	"log"
	"time"

	"bullionsite/internal/app"
	"bullionsite/internal/site"
	"bullionsite/internal/tools/sitemap"
)

func main() {
	outPath := flag.String("out", "static/sitemap.xml", "path to write sitemap XML")
	flag.Parse()

	cfg, err := app.LoadConfig("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	catalog, err := site.Load(cfg.Site)
	if err != nil {
		log.Fatalf("load site: %v", err)
	}

	set, err := sitemap.Export(catalog, *outPath, time.Now())
	if err != nil {
		log.Fatalf("export sitemap: %v", err)
	}

	log.Printf("wrote sitemap to %s (%d urls)", *outPath, len(set.URLs))
}
