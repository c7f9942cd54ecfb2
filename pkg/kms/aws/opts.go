/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package aws

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
)

const (
	defaultPendingWindowDays = 7

	// TagKeyWalletTag is the resource tag holding the wallet tag a KMS key was generated for.
	TagKeyWalletTag = "iowallet:key-tag"
)

type options struct {
	keyAliasPrefix    string
	awsClient         awsClient
	pendingWindowDays int32
	resourceTags      map[string]string
}

// Opts a Functional Options.
type Opts func(opts *options)

// WithKeyAliasPrefix prepends prefix to the alias of every wallet key, so several wallets can
// share an account.
func WithKeyAliasPrefix(prefix string) Opts {
	return func(opts *options) { opts.keyAliasPrefix = prefix }
}

// WithPendingWindowDays sets the waiting period before a deleted key is destroyed.
func WithPendingWindowDays(days int32) Opts {
	return func(opts *options) { opts.pendingWindowDays = days }
}

// WithResourceTags adds tags to every key created by Generate.
func WithResourceTags(tags map[string]string) Opts {
	return func(opts *options) {
		for k, v := range tags {
			opts.resourceTags[k] = v
		}
	}
}

// WithAWSClient sets custom AWS client.
func WithAWSClient(client awsClient) Opts {
	return func(opts *options) { opts.awsClient = client }
}

// keyTags returns the resource tags of a key generated for walletTag, sorted by key.
func (o *options) keyTags(walletTag string) []types.Tag {
	tags := make([]types.Tag, 0, len(o.resourceTags)+1)

	for k, v := range o.resourceTags {
		tags = append(tags, types.Tag{TagKey: aws.String(k), TagValue: aws.String(v)})
	}

	tags = append(tags, types.Tag{TagKey: aws.String(TagKeyWalletTag), TagValue: aws.String(walletTag)})

	sort.Slice(tags, func(i, j int) bool { return *tags[i].TagKey < *tags[j].TagKey })

	return tags
}
