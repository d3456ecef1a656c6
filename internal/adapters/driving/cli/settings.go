package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the content source, locale, listing backend and
other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsLocaleCmd = &cobra.Command{
	Use:   "locale [code]",
	Short: "Set the content locale",
	Long: `Set the requested content locale. Resources missing for the locale fall
back to the default locale. The next update check re-ingests everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsLocale,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend [name]",
	Short: "Set the directory listing backend",
	Long: `Set how unit directories are listed.

Available backends:
  http       - JSON directory index beside the content (default)
  github     - GitHub contents API
  filesystem - local mirror; enables the watch command`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsBackend,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsLocaleCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Content]")
	cmd.Printf("  Data root: %s\n", settings.Content.DataRoot)
	cmd.Printf("  Content root: %s\n", settings.Content.ContentRoot)
	cmd.Printf("  Locale: %s (default %s)\n", settings.Content.Locale, settings.Content.DefaultLocale)
	cmd.Printf("  Timeout: %s\n", settings.Content.Timeout)
	cmd.Println()

	cmd.Println("[Listing]")
	cmd.Printf("  Backend: %s\n", settings.Listing.Backend.Description())
	cmd.Printf("  Cache TTL: %s\n", settings.Listing.CacheTTL)
	cmd.Println()

	if settings.Listing.Backend == domain.ListingBackendGitHub {
		cmd.Println("[GitHub]")
		cmd.Printf("  Repository: %s/%s@%s\n", settings.GitHub.Owner, settings.GitHub.Repo, settings.GitHub.Ref)
		cmd.Printf("  Path: %s\n", settings.GitHub.Path)
		if settings.GitHub.Token != "" {
			cmd.Printf("  Token: %s\n", maskAPIKey(settings.GitHub.Token))
		} else {
			cmd.Printf("  Token: (not set)\n")
		}
		cmd.Println()
	}

	cmd.Println("[Search]")
	cmd.Printf("  Default limit: %d\n", settings.Search.Limit)
	cmd.Println()

	cmd.Println("[Scheduler]")
	if settings.Scheduler.Enabled {
		check := settings.Scheduler.GetTaskConfig(domain.TaskIDUpdateCheck)
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Update check: every %s\n", check.Interval)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'rulebook settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLocale(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	locale := strings.TrimSpace(args[0])
	if err := settingsService.SetLocale(locale); err != nil {
		return fmt.Errorf("failed to set locale: %w", err)
	}
	cmd.Printf("Locale set to: %s\n", locale)
	return nil
}

func runSettingsBackend(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var selected domain.ListingBackend
	if len(args) == 1 {
		selected = domain.ListingBackend(strings.TrimSpace(args[0]))
		if !selected.IsValid() {
			return fmt.Errorf("unknown backend %q", args[0])
		}
	} else {
		selected = chooseBackend(cmd, bufio.NewReader(os.Stdin), 0)
		if selected == "" {
			return errors.New("invalid selection")
		}
	}

	if err := settingsService.SetListingBackend(selected); err != nil {
		return fmt.Errorf("failed to set listing backend: %w", err)
	}
	cmd.Printf("Listing backend set to: %s\n", selected.Description())

	if selected == domain.ListingBackendGitHub {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.GitHub.IsConfigured() {
			cmd.Println("\nNote: This backend requires a GitHub repository.")
			cmd.Println("Run 'rulebook settings wizard' to configure.")
		}
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("rulebook Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Step 1: Locale
	cmd.Println("Step 1: Content Locale")
	cmd.Println("----------------------")
	cmd.Printf("Enter locale [%s]: ", settings.Content.Locale)
	if locale := readLine(reader); locale != "" {
		settings.Content.Locale = locale
	}
	cmd.Println()

	// Step 2: Listing backend
	cmd.Println("Step 2: Listing Backend")
	cmd.Println("-----------------------")
	settings.Listing.Backend = chooseBackend(cmd, reader, 1)
	cmd.Println()

	// Step 3: Backend details
	switch settings.Listing.Backend {
	case domain.ListingBackendGitHub:
		cmd.Println("Step 3: GitHub Repository")
		cmd.Println("-------------------------")
		configureGitHub(cmd, reader, &settings.GitHub)
	case domain.ListingBackendFilesystem:
		cmd.Println("Step 3: Local Mirror")
		cmd.Println("--------------------")
		cmd.Printf("Enter content directory [%s]: ", settings.Content.ContentRoot)
		if root := readLine(reader); root != "" {
			settings.Content.ContentRoot = root
		}
		cmd.Printf("Enter data directory [%s]: ", settings.Content.DataRoot)
		if root := readLine(reader); root != "" {
			settings.Content.DataRoot = root
		}
	default:
		cmd.Println("Step 3: Backend details (skipped)")
		cmd.Println("---------------------------------")
		cmd.Println("Not required for the HTTP backend.")
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

// chooseBackend prompts for a listing backend. It returns "" when the
// input is invalid and defaultChoice is 0.
func chooseBackend(cmd *cobra.Command, reader *bufio.Reader, defaultChoice int) domain.ListingBackend {
	backends := domain.AllListingBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	if defaultChoice > 0 {
		cmd.Printf("\nEnter choice [%d]: ", defaultChoice)
	} else {
		cmd.Print("\nEnter choice: ")
	}
	idx := parseChoice(readLine(reader), len(backends), defaultChoice)
	if idx == 0 {
		return ""
	}
	return backends[idx-1]
}

func configureGitHub(cmd *cobra.Command, reader *bufio.Reader, gh *domain.GitHubSettings) {
	prompt := func(label string, target *string) {
		cmd.Printf("Enter %s [%s]: ", label, *target)
		if v := readLine(reader); v != "" {
			*target = v
		}
	}
	prompt("owner", &gh.Owner)
	prompt("repository", &gh.Repo)
	prompt("ref", &gh.Ref)
	prompt("content path", &gh.Path)

	cmd.Print("Enter token (optional, leave empty to keep): ")
	if token := readPassword(); token != "" {
		gh.Token = token
	}
	cmd.Println()
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
