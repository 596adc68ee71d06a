package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/telework/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the ArcGIS password in the OS keyring",
	Long: "Reads the password of arcgis.username from standard input and stores it " +
		"in the OS keyring under arcgis.profile.",
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if cfg.ArcGIS.Username == "" {
		return fmt.Errorf("arcgis.username is not configured")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", cfg.ArcGIS.Username)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	service := cfg.ArcGIS.KeyringService()
	if err := auth.SavePassword(service, cfg.ArcGIS.Username, strings.TrimRight(line, "\r\n")); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s in keyring service %q\n", cfg.ArcGIS.Username, service)
	return nil
}
