package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type screenOptions struct {
	role     string
	text     bool
	json     bool
	noColor  bool
	noPrompt bool
}

var screenOpts screenOptions

var screenCmd = &cobra.Command{
	Use:   "screen <resume.pdf>",
	Short: "Screen one resume and print the rubric report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScreen(cmd, args[0], screenOpts)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVarP(&screenOpts.role, "role", "r", "", "role profile slug (default from config)")
	screenCmd.Flags().BoolVarP(&screenOpts.text, "text", "t", false, "treat the file as plain resume text and skip the document review")
	screenCmd.Flags().BoolVar(&screenOpts.json, "json", false, "print the result as JSON")
	screenCmd.Flags().BoolVar(&screenOpts.noColor, "no-color", false, "disable colored output")
	screenCmd.Flags().BoolVar(&screenOpts.noPrompt, "no-prompt", false, "fail instead of asking for missing API keys")
}

func runScreen(cmd *cobra.Command, path string, opts screenOptions) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read resume")
	}
	if !opts.text {
		if err := services.ValidateUpload(filepath.Base(path), data, cfg.Screening.MaxFileSize); err != nil {
			return err
		}
	}

	var prompt credentials.PromptFunc
	if !opts.noPrompt {
		prompt = promptKey
	}
	resolver := credentials.NewResolver(cfg.Gemini.APIKey, cfg.OpenAI.APIKey, prompt)

	providers := credentials.Providers
	if opts.text {
		providers = []credentials.Provider{credentials.OpenAI}
	}
	creds, err := resolver.Resolve(credentials.Session{}, providers...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	roles, err := bootstrap.Roles(ctx, cfg, log)
	if err != nil {
		return err
	}
	screener := bootstrap.Screener(cfg, roles, log)

	result, err := screen(ctx, screener, path, data, creds, opts)
	if err != nil {
		var stageErr *services.StageError
		if errors.As(err, &stageErr) {
			log.Error("screening failed", zap.String("stage", string(stageErr.Stage)), zap.Error(err))
		}
		return err
	}

	return writeResult(cmd.OutOrStdout(), result, opts)
}

func screen(ctx context.Context, screener services.Screener, path string, data []byte, creds credentials.Credentials, opts screenOptions) (*models.ScreeningResult, error) {
	if opts.text {
		return screener.ScreenText(ctx, services.TextScreenRequest{
			Resume:      string(data),
			Role:        opts.role,
			Credentials: creds,
		})
	}
	return screener.Screen(ctx, services.ScreenRequest{
		Document:    data,
		Filename:    filepath.Base(path),
		Role:        opts.role,
		Credentials: creds,
	})
}

func writeResult(w io.Writer, result *models.ScreeningResult, opts screenOptions) error {
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(models.NewScreenResponse(result))
	}
	_, err := fmt.Fprintln(w, RenderResult(result, opts.noColor))
	return err
}
