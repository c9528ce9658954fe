package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// HealthCheckCmd returns the health-check command used by container HEALTHCHECK.
func HealthCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health-check",
		Short: "Check a running server and exit non-zero if it is unhealthy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.Addr
			}
			return runHealthCheck(addr)
		},
	}

	cmd.Flags().String("addr", "", "Server address to check (CAMP_ADDR)")

	return cmd
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + host + "/api/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}
