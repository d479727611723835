package artifact_source

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

// GcpConnection is the `gcp` block of the fetch config
type GcpConnection struct {
	Project      *string `hcl:"project,optional" yaml:"project"`
	Credentials  *string `hcl:"credentials,optional" yaml:"credentials"`
	QuotaProject *string `hcl:"quota_project,optional" yaml:"quotaProject"`
	Impersonate  *string `hcl:"impersonate,optional" yaml:"impersonate"`
	// custom endpoint, e.g. for a storage emulator - requests are not authenticated
	Endpoint *string `hcl:"endpoint,optional" yaml:"endpoint"`
}

func (c *GcpConnection) Validate() error {
	if c.Endpoint != nil && (c.Credentials != nil || c.Impersonate != nil) {
		return fmt.Errorf("endpoint cannot be combined with credentials or impersonate")
	}
	return nil
}

func (c *GcpConnection) Identifier() string {
	return "gcp"
}

func (c *GcpConnection) GetProject() string {
	if c.Project != nil {
		return *c.Project
	}

	for _, envVar := range []string{"CLOUDSDK_CORE_PROJECT", "GCP_PROJECT"} {
		if val, exists := os.LookupEnv(envVar); exists {
			return val
		}
	}
	return ""
}

func (c *GcpConnection) GetClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if c.Endpoint != nil {
		opts = append(opts, option.WithEndpoint(*c.Endpoint), option.WithoutAuthentication())
		return opts, nil
	}

	// credentials
	if c.Credentials != nil {
		contents, err := pathOrContents(*c.Credentials)
		if err != nil {
			return opts, fmt.Errorf("error reading credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}

	// quota project
	qp := os.Getenv("GOOGLE_CLOUD_QUOTA_PROJECT")
	if c.QuotaProject != nil {
		qp = *c.QuotaProject
	}
	if qp != "" {
		opts = append(opts, option.WithQuotaProject(qp))
	}

	// impersonation of service account
	if c.Impersonate != nil {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: *c.Impersonate,
			Scopes:          []string{"https://www.googleapis.com/auth/devstorage.read_only"},
		})
		if err != nil {
			return opts, fmt.Errorf("error creating impersonation token source: %w", err)
		}

		opts = append(opts, option.WithTokenSource(ts))
	}
	return opts, nil
}

// pathOrContents returns the contents of the file if in is a path to an existing file, otherwise in itself
func pathOrContents(in string) (string, error) {
	if len(in) == 0 {
		return "", nil
	}

	filePath, err := homedir.Expand(in)
	if err != nil {
		return filePath, err
	}

	if _, err := os.Stat(filePath); err == nil {
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(contents), nil
	}

	if len(filePath) > 1 && (filePath[0] == '/' || filePath[0] == '\\') {
		return "", fmt.Errorf("%s: no such file or dir", filePath)
	}

	return in, nil
}
