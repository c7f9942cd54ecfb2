/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination service_mocks_test.go -package aws -source=service.go

package aws

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/go-jose/go-jose/v3"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
)

var logger = log.New("iowallet-kms-aws")

type awsClient interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput,
		optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput,
		optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	CreateKey(ctx context.Context, params *kms.CreateKeyInput,
		optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput,
		optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	UpdateAlias(ctx context.Context, params *kms.UpdateAliasInput,
		optFns ...func(*kms.Options)) (*kms.UpdateAliasOutput, error)
	DeleteAlias(ctx context.Context, params *kms.DeleteAliasInput,
		optFns ...func(*kms.Options)) (*kms.DeleteAliasOutput, error)
	ScheduleKeyDeletion(ctx context.Context, params *kms.ScheduleKeyDeletionInput,
		optFns ...func(*kms.Options)) (*kms.ScheduleKeyDeletionOutput, error)
}

type metricsProvider interface {
	SignCount()
	SignTime(value time.Duration)
	ExportPublicKeyCount()
	ExportPublicKeyTime(value time.Duration)
}

type ecdsaSignature struct {
	R, S *big.Int
}

const coordinateSize = 32

// Service is a key store backed by AWS KMS. Each tag maps to the alias alias/<prefix><tag>.
type Service struct {
	options *options
	client  awsClient
	metrics metricsProvider
}

// New return aws service.
func New(awsConfig *aws.Config, metrics metricsProvider, opts ...Opts) *Service {
	o := &options{
		pendingWindowDays: defaultPendingWindowDays,
		resourceTags:      map[string]string{},
	}

	for _, opt := range opts {
		opt(o)
	}

	client := o.awsClient
	if client == nil {
		client = kms.NewFromConfig(*awsConfig)
	}

	return &Service{
		options: o,
		client:  client,
		metrics: metrics,
	}
}

// Generate creates a P-256 signing key and points the tag alias at it.
func (s *Service) Generate(ctx context.Context, tag string) (*jose.JSONWebKey, error) {
	result, err := s.client.CreateKey(ctx, &kms.CreateKeyInput{
		KeySpec:  types.KeySpecEccNistP256,
		KeyUsage: types.KeyUsageTypeSignVerify,
		Tags:     s.options.keyTags(tag),
	})
	if err != nil {
		return nil, fmt.Errorf("create key: %w", err)
	}

	alias := s.aliasName(tag)

	_, err = s.client.CreateAlias(ctx, &kms.CreateAliasInput{
		AliasName:   aws.String(alias),
		TargetKeyId: result.KeyMetadata.KeyId,
	})

	var exists *types.AlreadyExistsException
	if errors.As(err, &exists) {
		_, err = s.client.UpdateAlias(ctx, &kms.UpdateAliasInput{
			AliasName:   aws.String(alias),
			TargetKeyId: result.KeyMetadata.KeyId,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("bind alias %s: %w", alias, err)
	}

	logger.Debug("KMS key created", logfields.WithKeyTag(tag))

	return s.publicKey(ctx, alias)
}

// Delete removes the tag alias and schedules the key for deletion.
func (s *Service) Delete(ctx context.Context, tag string) error {
	alias := s.aliasName(tag)

	describeKey, err := s.client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(alias)})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return cryptoctx.ErrKeyNotFound
		}

		return fmt.Errorf("describe key: %w", err)
	}

	if _, err = s.client.DeleteAlias(ctx, &kms.DeleteAliasInput{AliasName: aws.String(alias)}); err != nil {
		return fmt.Errorf("delete alias %s: %w", alias, err)
	}

	_, err = s.client.ScheduleKeyDeletion(ctx, &kms.ScheduleKeyDeletionInput{
		KeyId:               describeKey.KeyMetadata.KeyId,
		PendingWindowInDays: aws.Int32(s.options.pendingWindowDays),
	})
	if err != nil {
		return fmt.Errorf("schedule key deletion: %w", err)
	}

	return nil
}

// Context returns the crypto context for tag.
func (s *Service) Context(tag string) cryptoctx.Context {
	return &keyContext{svc: s, alias: s.aliasName(tag)}
}

func (s *Service) aliasName(tag string) string {
	return "alias/" + s.options.keyAliasPrefix + tag
}

func (s *Service) publicKey(ctx context.Context, keyID string) (*jose.JSONWebKey, error) {
	startTime := time.Now()

	defer func() {
		if s.metrics != nil {
			s.metrics.ExportPublicKeyTime(time.Since(startTime))
		}
	}()

	if s.metrics != nil {
		s.metrics.ExportPublicKeyCount()
	}

	result, err := s.client.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyID)})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", cryptoctx.ErrKeyNotFound, keyID)
		}

		return nil, fmt.Errorf("get public key: %w", err)
	}

	pub, err := x509.ParsePKIXPublicKey(result.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok || ecPub.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported public key type %T", pub)
	}

	key := &jose.JSONWebKey{Key: ecPub, Algorithm: string(jose.ES256), Use: "sig"}

	key.KeyID, err = cryptoctx.Thumbprint(key)
	if err != nil {
		return nil, err
	}

	return key, nil
}

func (s *Service) sign(ctx context.Context, keyID string, msg []byte) ([]byte, error) {
	startTime := time.Now()

	defer func() {
		if s.metrics != nil {
			s.metrics.SignTime(time.Since(startTime))
		}
	}()

	if s.metrics != nil {
		s.metrics.SignCount()
	}

	digest := sha256.Sum256(msg)

	result, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(keyID),
		Message:          digest[:],
		MessageType:      types.MessageTypeDigest,
		SigningAlgorithm: types.SigningAlgorithmSpecEcdsaSha256,
	})
	if err != nil {
		return nil, fmt.Errorf("kms sign: %w", err)
	}

	signature := ecdsaSignature{}

	if _, err = asn1.Unmarshal(result.Signature, &signature); err != nil {
		return nil, fmt.Errorf("decode der signature: %w", err)
	}

	raw := make([]byte, 2*coordinateSize)
	signature.R.FillBytes(raw[:coordinateSize])
	signature.S.FillBytes(raw[coordinateSize:])

	return raw, nil
}

type keyContext struct {
	svc   *Service
	alias string
}

func (c *keyContext) PublicKey(ctx context.Context) (*jose.JSONWebKey, error) {
	return c.svc.publicKey(ctx, c.alias)
}

func (c *keyContext) Sign(ctx context.Context, data []byte) ([]byte, error) {
	return c.svc.sign(ctx, c.alias, data)
}
