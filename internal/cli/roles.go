package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/models"
)

var rolesNoColor bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage role profiles",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the role profiles resumes can be screened against",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		roles, err := bootstrap.Roles(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		list, err := roles.List(cmd.Context())
		if err != nil {
			return err
		}
		return writeRoles(cmd.OutOrStdout(), list, cfg.Screening.DefaultRole, rolesNoColor)
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rolesCmd.AddCommand(rolesListCmd)

	rolesListCmd.Flags().BoolVar(&rolesNoColor, "no-color", false, "disable colored output")
}

func writeRoles(w io.Writer, roles []models.RoleProfile, defaultRole string, noColor bool) error {
	width := len("SLUG")
	for _, r := range roles {
		width = max(width, len(r.Slug))
	}

	header := fmt.Sprintf("%-*s  %-9s  %s", width, "SLUG", "THRESHOLD", "TITLE")
	if _, err := fmt.Fprintln(w, stylize(header, noColor, lipgloss.Color("252"), true)); err != nil {
		return err
	}
	for _, r := range roles {
		line := fmt.Sprintf("%-*s  %-9s  %s", width, r.Slug, fmt.Sprintf("%d/4", r.Threshold), r.Title)
		if r.Slug == defaultRole {
			line += stylize(" (default)", noColor, mutedColor, false)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
