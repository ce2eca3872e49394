// Package awscfg loads the shared AWS SDK configuration used by the S3 and
// SQS clients.
package awscfg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Load resolves region and credentials. Static keys are used when both are
// set; otherwise the SDK default chain applies (env, shared files, IAM role).
func Load(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(region))

	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("awscfg: loading AWS config: %w", err)
	}
	return awsCfg, nil
}
