package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/resolve"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/sayimcli"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "config":
		handleConfig(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "brands":
		handleBrands(os.Args[2:])
	case "lookup":
		handleLookup(os.Args[2:])
	case "search":
		handleSearch(os.Args[2:])
	case "scan":
		handleScan(os.Args[2:])
	case "version":
		fmt.Println("sayim dev")
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`sayim <command> [args]

Commands:
  config           Show or update API URL, category and operator
  health           Check the counting service
  stats            Show today's counters
  brands           List the brand vocabulary
  lookup           Resolve a barcode without saving
  search           Resolve a search term without saving
  scan             Interactive counting session
  version          Show CLI version`)
}

func handleConfig(args []string) {
	flags := flag.NewFlagSet("config", flag.ExitOnError)
	api := flags.String("api", "", "counting service base URL")
	category := flags.String("category", "", "workspace category (OF|GN|LN)")
	operator := flags.String("operator", "", "operator name recorded with counts")
	_ = flags.Parse(args)

	cfg, err := sayimcli.LoadConfig()
	dieIf(err)

	changed := false
	if *api != "" {
		cfg.APIBaseURL = strings.TrimSpace(*api)
		changed = true
	}
	if *category != "" {
		parsed, err := models.ParseCategory(*category)
		dieIf(err)
		cfg.Category = parsed
		changed = true
	}
	if *operator != "" {
		cfg.Operator = strings.TrimSpace(*operator)
		changed = true
	}
	if changed {
		dieIf(sayimcli.SaveConfig(cfg))
		fmt.Println("Saved config to", mustConfigPath())
	}

	fmt.Printf("API:      %s\n", cfg.APIBaseURL)
	fmt.Printf("Category: %s (%s)\n", cfg.Category, cfg.Category.DisplayName())
	if cfg.Operator != "" {
		fmt.Printf("Operator: %s\n", cfg.Operator)
	}
}

func handleHealth(args []string) {
	flags := flag.NewFlagSet("health", flag.ExitOnError)
	jsonOut := flags.Bool("json", false, "JSON output")
	_ = flags.Parse(args)

	client := newClient("")
	resp, err := client.Health(context.Background())
	dieIf(err)

	if *jsonOut {
		printJSON(resp)
		return
	}
	fmt.Printf("Status:  %s\n", resp.Status)
	if resp.Version != "" {
		fmt.Printf("Version: %s\n", resp.Version)
	}
	for _, category := range models.Categories() {
		if ready, ok := resp.Categories[category]; ok {
			fmt.Printf("  %-2s %-16s %v\n", category, category.DisplayName(), ready)
		}
	}
}

func handleStats(args []string) {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	category := flags.String("category", "", "category override")
	jsonOut := flags.Bool("json", false, "JSON output")
	_ = flags.Parse(args)

	client := newClient(*category)
	stats, err := client.Stats(context.Background(), client.Category)
	dieIf(err)

	if *jsonOut {
		printJSON(stats)
		return
	}
	fmt.Printf("%s: %d counted, %d direct (%.0f%%), %d ambiguous, %d not found\n",
		client.Category.DisplayName(), stats.Total, stats.Direct, stats.DirectRatio, stats.Ambiguous, stats.NotFound)
}

func handleBrands(args []string) {
	flags := flag.NewFlagSet("brands", flag.ExitOnError)
	category := flags.String("category", "", "category override")
	jsonOut := flags.Bool("json", false, "JSON output")
	_ = flags.Parse(args)

	client := newClient(*category)
	brands, err := client.Brands(context.Background(), client.Category)
	dieIf(err)

	if *jsonOut {
		printJSON(brands)
		return
	}
	if len(brands) == 0 {
		fmt.Println("No brands found.")
		return
	}
	for _, brand := range brands {
		fmt.Printf("%-18s  %-6s  %s\n", brand.ID, brand.Code, brand.Name)
	}
}

func handleLookup(args []string) {
	flags := flag.NewFlagSet("lookup", flag.ExitOnError)
	category := flags.String("category", "", "category override")
	brand := flags.String("brand", "", "brand id filter")
	jsonOut := flags.Bool("json", false, "JSON output")
	_ = flags.Parse(args)
	if flags.NArg() != 1 {
		die("usage: sayim lookup [--brand <id>] <barcode>")
	}

	client := newClient(*category)
	outcome, err := resolve.New(client).ByBarcode(context.Background(), client.Category, flags.Arg(0), contextFilter(*brand))
	dieIf(err)
	printOutcome(outcome, *jsonOut)
}

func handleSearch(args []string) {
	flags := flag.NewFlagSet("search", flag.ExitOnError)
	category := flags.String("category", "", "category override")
	brand := flags.String("brand", "", "brand id filter")
	jsonOut := flags.Bool("json", false, "JSON output")
	_ = flags.Parse(args)
	term := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if term == "" {
		die("usage: sayim search [--brand <id>] <term>")
	}

	client := newClient(*category)
	outcome, err := resolve.New(client).ByTerm(context.Background(), client.Category, term, contextFilter(*brand))
	dieIf(err)
	printOutcome(outcome, *jsonOut)
}

func handleScan(args []string) {
	flags := flag.NewFlagSet("scan", flag.ExitOnError)
	category := flags.String("category", "", "category override")
	operator := flags.String("operator", "", "operator override")
	selectable := flags.Bool("any-category", false, "allow switching category during the session")
	keep := flags.Bool("keep-not-found", false, "stay on the not-found screen after saving")
	_ = flags.Parse(args)

	cfg, err := sayimcli.LoadConfig()
	dieIf(err)
	client := newClient(*category)
	name := firstNonEmpty(strings.TrimSpace(*operator), cfg.Operator)

	policy := workflow.NotFoundReset
	if *keep {
		policy = workflow.NotFoundKeep
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := bufio.NewWriter(os.Stdout)
	repl := newScanREPL(os.Stdin, out)
	repl.saveOperator = func(name string) error {
		cfg, err := sayimcli.LoadConfig()
		if err != nil {
			return err
		}
		cfg.Operator = name
		return sayimcli.SaveConfig(cfg)
	}
	repl.coordinator = workflow.NewCoordinator(client, workflow.Options{
		SessionID:          "cli",
		Category:           client.Category,
		CategorySelectable: *selectable,
		Operator:           name,
		NotFoundAfterSave:  policy,
		Notifier:           workflow.NotifierFunc(repl.notify),
	})
	dieIf(repl.run(ctx))
}

func newClient(categoryOverride string) *sayimcli.Client {
	cfg, err := sayimcli.LoadConfig()
	dieIf(err)
	if categoryOverride != "" {
		parsed, err := models.ParseCategory(categoryOverride)
		dieIf(err)
		cfg.Category = parsed
	}
	return sayimcli.NewClient(cfg)
}

func contextFilter(brand string) models.SearchContext {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return models.SearchContext{}
	}
	return models.SearchContext{Brand: &brand}
}

func printOutcome(outcome resolve.Outcome, jsonOut bool) {
	if jsonOut {
		printJSON(outcome)
		return
	}
	switch outcome.Kind {
	case resolve.KindDirect:
		fmt.Printf("Direct (%.0f%%): %s\n", outcome.Direct.Confidence, describeProduct(outcome.Direct.Product))
	case resolve.KindAmbiguous:
		fmt.Printf("Ambiguous: %d candidates\n", len(outcome.Ambiguous.Candidates))
		for i, candidate := range outcome.Ambiguous.Candidates {
			fmt.Printf("  %d. %s\n", i+1, describeProduct(candidate.Product))
		}
	default:
		fmt.Println("Not found.")
	}
}

func printJSON(v any) {
	payload, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(payload))
}

func die(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func dieIf(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	die(formatCLIError(err))
}

func formatCLIError(err error) string {
	if err == nil {
		return ""
	}
	if sayimcli.IsTransport(err) {
		return "Counting service unreachable: " + err.Error() + "\nCheck the API URL with: sayim config --api <url>"
	}
	var serverErr *sayimcli.ServerError
	if errors.As(err, &serverErr) && strings.TrimSpace(serverErr.Message) != "" {
		return serverErr.Message
	}
	return strings.TrimSpace(err.Error())
}

func mustConfigPath() string {
	path, err := sayimcli.ConfigPath()
	if err != nil {
		return "config"
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
