/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms selects the key store that holds wallet keys.
package kms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	awssvc "github.com/trustbloc/iowallet/pkg/kms/aws"
	"github.com/trustbloc/iowallet/pkg/kms/local"
	"github.com/trustbloc/iowallet/pkg/observability/metrics"
)

type Type string

const (
	AWS   Type = "aws"
	Local Type = "local"
)

// Config configures the kms that stores wallet keys.
type Config struct {
	KMSType     Type `json:"kmsType"`
	Endpoint    string
	Region      string
	AliasPrefix string
}

// NewKeyStore returns the key store cfg selects.
func NewKeyStore(ctx context.Context, cfg *Config, m metrics.Metrics) (cryptoctx.KeyStore, error) {
	switch cfg.KMSType {
	case Local, "":
		return local.New(local.WithMetrics(m)), nil
	case AWS:
		var loadOpts []func(*awsconfig.LoadOptions) error

		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}

		if cfg.Endpoint != "" {
			loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(&EndpointResolver{
				Endpoint: cfg.Endpoint,
			}))
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		return awssvc.New(&awsConfig, m, awssvc.WithKeyAliasPrefix(cfg.AliasPrefix)), nil
	}

	return nil, fmt.Errorf("unsupported kms type %q", cfg.KMSType)
}

// EndpointResolver points the KMS client at a custom endpoint, such as a local KMS emulator.
type EndpointResolver struct {
	Endpoint string
}

func (e *EndpointResolver) ResolveEndpoint(service, region string, _ ...interface{}) (aws.Endpoint, error) {
	return aws.Endpoint{
		URL:               e.Endpoint,
		SigningRegion:     region,
		HostnameImmutable: true,
	}, nil
}
