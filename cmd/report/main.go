// Command report runs attribution over local JSON fixtures and writes an
// Excel workbook plus a markdown summary. Useful for offline analysis of
// exported order and post dumps without API credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"postlift/adapters/excel"
	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/internal/engine"
	"postlift/ui"
)

func main() {
	ordersPath := flag.String("orders", "orders.json", "path to the orders JSON dump")
	influencersPath := flag.String("influencers", "influencers.json", "path to the influencers JSON dump")
	startStr := flag.String("start", "", "campaign window start (RFC3339)")
	endStr := flag.String("end", "", "campaign window end (RFC3339)")
	out := flag.String("out", "attribution.xlsx", "output workbook path")
	workers := flag.Int("workers", 1, "parallel order shards")
	flag.Parse()

	if err := run(*ordersPath, *influencersPath, *startStr, *endStr, *out, *workers); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ordersPath, influencersPath, startStr, endStr, out string, workers int) error {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return fmt.Errorf("parsing -start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return fmt.Errorf("parsing -end: %w", err)
	}

	var orders []campaign.Order
	if err := readJSON(ordersPath, &orders); err != nil {
		return err
	}
	var influencers []campaign.Influencer
	if err := readJSON(influencersPath, &influencers); err != nil {
		return err
	}

	eng, err := engine.New(attribution.DefaultWeights())
	if err != nil {
		return err
	}

	var result *attribution.Result
	if workers > 1 {
		result, err = eng.ComputeParallel(context.Background(), orders, influencers, start, end, workers)
	} else {
		result, err = eng.Compute(orders, influencers, start, end)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()
	if err := excel.NewReportWriter().Write(f, result); err != nil {
		return err
	}

	fmt.Println(ui.MethodologyMarkdown(result))
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
