package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/methodmap/internal/provider"
	"github.com/runger/methodmap/internal/runs"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show methodmap status",
	GroupID: groupSetup,
	Long: `Show the current status of methodmap, including:
- Configuration file location
- Model backends and which one extraction will use
- Run store location and saved run count
- Log file location

Examples:
  methodmap status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	applyColorMode()

	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("%smethodmap Status%s\n", colorBold, colorReset)
	fmt.Println(strings.Repeat("-", 40))

	// Configuration
	fmt.Printf("\n%sConfiguration:%s\n", colorBold, colorReset)
	configFile := a.paths.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("  File:     %s\n", configFile)
	} else {
		fmt.Printf("  File:     %s (not found, using defaults)\n", configFile)
	}
	fmt.Printf("  Search:   %s (limit %d)\n", a.cfg.Search.BaseURL, a.cfg.Search.Limit)
	fmt.Printf("  Redact:   %s\n", formatBool(a.cfg.Privacy.SanitizeAICalls))

	printProviders(a.registry)

	// Storage
	fmt.Printf("\n%sRuns:%s\n", colorBold, colorReset)
	backend := a.cfg.Runs.Backend
	if backend == runs.BackendSQLite {
		dbFile := a.paths.RunsDatabase()
		if info, err := os.Stat(dbFile); err == nil {
			fmt.Printf("  Database: %s (%s)\n", dbFile, formatSize(info.Size()))
		} else {
			fmt.Printf("  Database: %s (not created)\n", dbFile)
		}
	} else {
		fmt.Printf("  Dir:      %s\n", a.cfg.RunsDir(a.paths))
	}
	if names, err := a.store.List(ctx); err == nil {
		fmt.Printf("  Saved:    %d\n", len(names))
	} else {
		fmt.Printf("  Saved:    %sunavailable%s (%v)\n", colorYellow, colorReset, err)
	}

	fmt.Printf("\n%sLogs:%s\n", colorBold, colorReset)
	fmt.Printf("  File:     %s (level %s)\n", a.cfg.LogFile(a.paths), a.cfg.Logging.Level)

	return nil
}

// printProviders lists every model backend with its availability and marks
// the one extraction will use.
func printProviders(r *provider.Registry) {
	fmt.Printf("\n%sModel:%s\n", colorBold, colorReset)
	fmt.Printf("  Preferred: %s\n", r.GetPreferred())

	selected := ""
	if p, err := r.GetBest(); err == nil {
		selected = p.Name()
	}

	all := r.ListAll()
	for _, name := range providerOrder(all) {
		available := all[name]
		state := colorDim + "unavailable" + colorReset
		if available {
			state = colorGreen + "available" + colorReset
		}
		marker := " "
		if name == selected {
			marker = "*"
		}
		fmt.Printf("  %s %-11s %s\n", marker, name, state)
	}
	if selected == "" {
		fmt.Printf("  %sNo backend available; extraction will return no rows.%s\n", colorYellow, colorReset)
	}
}

// providerOrder returns the registered names in selection priority, then any
// others alphabetically.
func providerOrder(all map[string]bool) []string {
	names := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, name := range provider.ProviderPriority {
		if _, ok := all[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range all {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func formatBool(b bool) string {
	if b {
		return colorGreen + "enabled" + colorReset
	}
	return colorDim + "disabled" + colorReset
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
