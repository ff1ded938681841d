// Package awsconfig builds aws.Config values for the AWS-backed adapters.
package awsconfig

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options holds region and optional static credentials. When AccessKeyID or
// SecretAccessKey is empty the default credential chain is used.
type Options struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	SessionToken       string
	InsecureSkipVerify bool
}

// HasStaticCredentials reports whether both static keys are set.
func (o Options) HasStaticCredentials() bool {
	return o.AccessKeyID != "" && o.SecretAccessKey != ""
}

// Load returns an aws.Config for o.
func Load(ctx context.Context, o Options) (aws.Config, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(o.Region),
	}
	if o.HasStaticCredentials() {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, o.SessionToken),
			),
		))
	}
	if o.InsecureSkipVerify {
		loadOpts = append(loadOpts, awscfg.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
