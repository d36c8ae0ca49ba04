package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reannemartin/folio/content"
	"github.com/reannemartin/folio/scaffold"
)

var initURL string

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a new site directory with config, .env and an editable catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new folio site: %s\n\n", dir)
		data := scaffold.Data{
			SiteName:      toTitle(filepath.Base(dir)),
			URL:           initURL,
			SessionSecret: hex.EncodeToString(secret),
		}
		if err := scaffold.Write(dir, data, content.DefaultSource(), out); err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Done! Next steps:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintf(out, "  folio check %s\n", scaffold.CatalogFile)
		fmt.Fprintln(out, "  folio serve")
		return nil
	},
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-site" -> "My Site"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	initCmd.Flags().StringVar(&initURL, "url", "http://localhost:3000", "canonical site URL")
	rootCmd.AddCommand(initCmd)
}
