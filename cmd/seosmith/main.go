package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/internal/server"
	"github.com/amosWeiskopf/seosmith/pkg/edits"
	"github.com/amosWeiskopf/seosmith/pkg/pipeline"
	"github.com/amosWeiskopf/seosmith/pkg/reporter"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "seosmith",
	Short: "SEOSmith - SEO analysis and content suggestions",
	Long: `SEOSmith analyzes a page's on-page SEO, scores it, explains what is wrong,
suggests better titles, descriptions and headings, and tracks edits pushed
to WordPress, Shopify or GitHub.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [URL]",
	Short: "Analyze a page and print a report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")
		platform, _ := cmd.Flags().GetString("platform")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if len(args) == 0 && websiteID == "" {
			return errors.New("a URL or --website is required")
		}
		f, err := reporter.ParseFormat(format)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, websiteID != "")
		if err != nil {
			return err
		}
		defer a.Close()

		req := pipeline.Request{WebsiteID: websiteID, Platform: models.Platform(platform)}
		if len(args) > 0 {
			req.URL = args[0]
		}
		res, err := a.service.Analyze(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		report, err := reporter.New().Render(res.Analysis, f)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}
		return writeOutput(cmd, output, report)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [URL]",
	Short: "Generate suggestions and platform-ready content for a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.service.Generate(cmd.Context(), args[0], models.Platform(platform))
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		out, err := reporter.New().RenderGeneration(g)
		if err != nil {
			return err
		}
		return writeOutput(cmd, output, out)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.Server.Addr()
		}
		return serve(cmd.Context(), a, addr)
	},
}

func serve(ctx context.Context, a *app, addr string) error {
	srv := server.New(server.Config{
		Service: a.service,
		Edits:   a.edits,
		Store:   a.store,
		Logger:  a.logger,
		Version: version,
	})
	httpServer := srv.HTTPServer(addr, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "backend", a.cfg.Backend.URL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

var websiteCmd = &cobra.Command{
	Use:   "website",
	Short: "Manage tracked websites",
}

var websiteAddCmd = &cobra.Command{
	Use:   "add [URL]",
	Short: "Track a website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		platform, _ := cmd.Flags().GetString("platform")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		site := &models.Website{UserID: user, URL: args[0], Platform: models.Platform(platform)}
		if err := a.store.CreateWebsite(cmd.Context(), site); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), site)
	},
}

var websiteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked websites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		sites, err := a.store.ListWebsites(cmd.Context(), user)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tURL\tPLATFORM\tLAST ANALYZED")
		for _, s := range sites {
			last := "never"
			if s.LastAnalyzedAt != nil {
				last = s.LastAnalyzedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.URL, s.Platform, last)
		}
		return tw.Flush()
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage connected platform accounts",
}

var accountConnectCmd = &cobra.Command{
	Use:   "connect [PLATFORM]",
	Short: "Store credentials used to push edits to a platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		token, _ := cmd.Flags().GetString("token")
		siteURL, _ := cmd.Flags().GetString("site-url")
		storeURL, _ := cmd.Flags().GetString("store-url")
		repo, _ := cmd.Flags().GetString("repo")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		acct := &models.ConnectedAccount{
			UserID:      user,
			Platform:    models.Platform(args[0]),
			AccessToken: token,
			SiteURL:     siteURL,
			StoreURL:    storeURL,
			Repo:        repo,
		}
		if err := a.store.SaveAccount(cmd.Context(), acct); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), acct)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Create, preview, apply and cancel page edits",
}

var editCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a pending edit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")
		field, _ := cmd.Flags().GetString("field")
		oldValue, _ := cmd.Flags().GetString("old")
		newValue, _ := cmd.Flags().GetString("new")
		variant, _ := cmd.Flags().GetInt("variant")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var e *models.EditRecord
		if newValue == "" && variant >= 0 {
			latest, err := a.store.ListAnalyses(ctx, websiteID, 1)
			if err != nil {
				return err
			}
			if len(latest) == 0 {
				return fmt.Errorf("website %s has no analysis yet, run analyze --website first", websiteID)
			}
			e, err = a.edits.CreateFromSuggestion(ctx, websiteID, models.FieldType(field), latest[0].Suggestions, variant)
			if err != nil {
				return err
			}
		} else {
			e, err = a.edits.Create(ctx, websiteID, models.FieldType(field), oldValue, newValue)
			if err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), e)
	},
}

var editListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a website's edits, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.edits.List(cmd.Context(), websiteID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFIELD\tSTATUS\tSIMULATED\tNEW VALUE")
		for _, e := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", e.ID, e.FieldType, e.Status, e.Simulated, e.NewValue)
		}
		return tw.Flush()
	},
}

var editPreviewCmd = &cobra.Command{
	Use:   "preview [EDIT_ID]",
	Short: "Show how an edit changes its field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.edits.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p := edits.PreviewEdit(e)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.FieldType.Label(), p.Inline)
		return nil
	},
}

var editApplyCmd = &cobra.Command{
	Use:   "apply [EDIT_ID]",
	Short: "Push a pending edit to its platform and mark it applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.edits.Apply(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var editCancelCmd = &cobra.Command{
	Use:   "cancel [EDIT_ID]",
	Short: "Cancel a pending edit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.edits.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Edit %s cancelled\n", e.ID)
		return nil
	},
}

func writeOutput(cmd *cobra.Command, output, content string) error {
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", output)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// Analyze command flags
	analyzeCmd.Flags().String("website", "", "Analyze a tracked website and store the result")
	analyzeCmd.Flags().String("platform", "", "Also format suggestions for a platform (wordpress, shopify, github, html, markdown)")
	analyzeCmd.Flags().String("format", "json", "Report format (json, html, markdown)")
	analyzeCmd.Flags().String("output", "", "Output file for the report")

	// Generate command flags
	generateCmd.Flags().String("platform", "", "Platform to format for (wordpress, shopify, github, html, markdown)")
	generateCmd.Flags().String("output", "", "Output file for generated content")

	// Serve command flags
	serveCmd.Flags().String("addr", "", "Listen address, overrides server.host and server.port")

	// Website commands
	websiteAddCmd.Flags().String("user", "", "Owning user ID")
	websiteAddCmd.Flags().String("platform", "", "Site platform (wordpress, shopify, github)")
	_ = websiteAddCmd.MarkFlagRequired("user")
	websiteListCmd.Flags().String("user", "", "Only list this user's websites")
	websiteCmd.AddCommand(websiteAddCmd, websiteListCmd)

	// Account commands
	accountConnectCmd.Flags().String("user", "", "Owning user ID")
	accountConnectCmd.Flags().String("token", "", "Platform access token")
	accountConnectCmd.Flags().String("site-url", "", "WordPress site URL")
	accountConnectCmd.Flags().String("store-url", "", "Shopify store URL")
	accountConnectCmd.Flags().String("repo", "", "GitHub repository (owner/name)")
	_ = accountConnectCmd.MarkFlagRequired("user")
	accountCmd.AddCommand(accountConnectCmd)

	// Edit commands
	editCreateCmd.Flags().String("website", "", "Website ID")
	editCreateCmd.Flags().String("field", "title", "Field to change (title, meta_description, h1, keywords)")
	editCreateCmd.Flags().String("old", "", "Current value")
	editCreateCmd.Flags().String("new", "", "Proposed value")
	editCreateCmd.Flags().Int("variant", -1, "Use this suggestion variant from the latest analysis instead of --new")
	_ = editCreateCmd.MarkFlagRequired("website")
	editListCmd.Flags().String("website", "", "Website ID")
	_ = editListCmd.MarkFlagRequired("website")
	editCmd.AddCommand(editCreateCmd, editListCmd, editPreviewCmd, editApplyCmd, editCancelCmd)

	// Add commands to root
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(websiteCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(editCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
