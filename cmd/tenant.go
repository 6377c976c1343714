// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-router/internal/types"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var (
	tenantExternalID   string
	tenantDomains      []string
	tenantEmailDomains []string
	tenantDBHost       string
	tenantDBPort       int
	tenantDBUsername   string
	tenantDBPassword   string
)

var createTenantCmd = &cobra.Command{
	Use:   "create [id] [name] [database]",
	Short: "Create a new tenant and provision its database",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := types.TenantSpec{
			ID:                  args[0],
			Name:                args[1],
			DatabaseName:        args[2],
			ExternalID:          tenantExternalID,
			Domains:             tenantDomains,
			AllowedEmailDomains: tenantEmailDomains,
			Host:                tenantDBHost,
			Port:                tenantDBPort,
			Username:            tenantDBUsername,
			Password:            tenantDBPassword,
		}

		var created types.Tenant
		if err := callAdminAPI(http.MethodPost, "/api/v0/tenants", &spec, &created); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		fmt.Printf("Tenant created: %s (ID: %s)\n", created.Name, created.ID)
		return nil
	},
}

var retireTenantCmd = &cobra.Command{
	Use:   "retire [id]",
	Short: "Retire a tenant's database binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := callAdminAPI(http.MethodDelete, "/api/v0/tenants/"+args[0], nil, nil); err != nil {
			return fmt.Errorf("failed to retire tenant: %w", err)
		}

		fmt.Printf("Tenant retired: %s\n", args[0])
		return nil
	},
}

var getTenantCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tenant types.Tenant
		if err := callAdminAPI(http.MethodGet, "/api/v0/tenants/"+args[0], nil, &tenant); err != nil {
			return fmt.Errorf("failed to get tenant: %w", err)
		}

		out, err := json.MarshalIndent(&tenant, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		var tenants []types.Tenant
		if err := callAdminAPI(http.MethodGet, "/api/v0/tenants", nil, &tenants); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tENABLED\tCREATED_AT")
		for _, t := range tenants {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", t.ID, t.Name, t.Enabled, t.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

var addDomainCmd = &cobra.Command{
	Use:   "add-domain [id] [domain]",
	Short: "Map an inbound domain to a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"domain": args[1]}

		var domain types.Domain
		if err := callAdminAPI(http.MethodPost, "/api/v0/tenants/"+args[0]+"/domains", body, &domain); err != nil {
			return fmt.Errorf("failed to add domain: %w", err)
		}

		fmt.Printf("Domain %s mapped to tenant %s\n", domain.Domain, domain.TenantID)
		return nil
	},
}

// callAdminAPI sends one JSON request to the admin API with the platform
// admin marker set.
func callAdminAPI(method, path string, in, out interface{}) error {
	endpoint := strings.TrimSuffix(httpEndpoint, "/")
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, endpoint+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Platform-Admin", "true")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(retireTenantCmd)
	tenantCmd.AddCommand(getTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(addDomainCmd)

	createTenantCmd.Flags().StringVar(&tenantExternalID, "external-id", "", "Identity provider organization ID")
	createTenantCmd.Flags().StringSliceVar(&tenantDomains, "domains", []string{}, "Comma-separated list of inbound domains")
	createTenantCmd.Flags().StringSliceVar(&tenantEmailDomains, "allowed-email-domains", []string{}, "Comma-separated list of allowed login email domains")
	createTenantCmd.Flags().StringVar(&tenantDBHost, "db-host", "", "Database host (defaults to the server's own)")
	createTenantCmd.Flags().IntVar(&tenantDBPort, "db-port", 0, "Database port")
	createTenantCmd.Flags().StringVar(&tenantDBUsername, "db-username", "", "Database username")
	createTenantCmd.Flags().StringVar(&tenantDBPassword, "db-password", "", "Database password")
}
