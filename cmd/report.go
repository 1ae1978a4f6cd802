package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"repairbox/internal/application"
	"repairbox/internal/config"
	"repairbox/internal/service"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print reports to stdout",
}

var reportDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "Daily report (defaults to today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportDay,
}

var reportWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Trailing seven-day report",
	RunE:  runReportWeek,
}

var reportClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Client history ranked by total spend",
	RunE:  runReportClients,
}

var reportClientsTop int

func init() {
	reportClientsCmd.Flags().IntVar(&reportClientsTop, "top", 0, "limit to the top N clients (0 lists all)")
	reportCmd.AddCommand(reportDayCmd)
	reportCmd.AddCommand(reportWeekCmd)
	reportCmd.AddCommand(reportClientsCmd)
}

func reportService() (*service.RepairService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	svc, _, err := application.Bootstrap(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func runReportDay(cmd *cobra.Command, args []string) error {
	svc, err := reportService()
	if err != nil {
		return err
	}
	dateKey := time.Now().Format("2006-01-02")
	if len(args) == 1 {
		if _, err := time.Parse("2006-01-02", args[0]); err != nil {
			return fmt.Errorf("bad date %q: want YYYY-MM-DD", args[0])
		}
		dateKey = args[0]
	}
	text, _ := svc.DailyReport(dateKey)
	fmt.Println(text)
	return nil
}

func runReportWeek(cmd *cobra.Command, args []string) error {
	svc, err := reportService()
	if err != nil {
		return err
	}
	fmt.Println(svc.WeekReport(time.Now()))
	return nil
}

func runReportClients(cmd *cobra.Command, args []string) error {
	svc, err := reportService()
	if err != nil {
		return err
	}
	fmt.Println(svc.ClientReport(reportClientsTop))
	return nil
}
