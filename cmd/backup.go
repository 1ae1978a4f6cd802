package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"repairbox/internal/application"
	"repairbox/internal/config"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export, import or wipe the data snapshot",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the full data snapshot to a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a snapshot file (asks for confirmation)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupImport,
}

var backupWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Remove every record and the stored document (asks for confirmation)",
	RunE:  runBackupWipe,
}

func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	backupCmd.AddCommand(backupWipeCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	svc, _, err := application.Bootstrap(cfg)
	if err != nil {
		return err
	}

	data, filename, err := svc.Export()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if len(args) == 1 {
		filename = args[0]
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	log.Printf("exported %d records to %s", svc.CountRecords(), filename)
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	svc, _, err := application.Bootstrap(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	count, err := svc.ImportPreview(data)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Import %d records and REPLACE all current data? [y/N]: ", count)
	if !confirm("y") {
		log.Println("import cancelled")
		return nil
	}
	if _, err := svc.ImportApply(data); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	log.Printf("imported %d records", count)
	return nil
}

func runBackupWipe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	svc, _, err := application.Bootstrap(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("This removes all %d records permanently. Type DELETE to confirm: ", svc.CountRecords())
	if !confirm("DELETE") {
		log.Println("wipe cancelled")
		return nil
	}
	if err := svc.Wipe(); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	log.Println("all data removed")
	return nil
}

func confirm(expect string) bool {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.TrimSpace(line)
	if expect == "y" {
		return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	}
	return answer == expect
}
