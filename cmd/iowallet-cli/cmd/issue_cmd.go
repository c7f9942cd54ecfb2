/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cli/browser"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
	"github.com/trustbloc/iowallet/pkg/credentialoffer"
	"github.com/trustbloc/iowallet/pkg/cryptoctx"
	"github.com/trustbloc/iowallet/pkg/issuance"
	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/redirect"
)

const (
	credentialOfferFlagName  = "credential-offer"
	credentialOfferEnvKey    = "IOWALLET_CREDENTIAL_OFFER"
	credentialOfferFlagUsage = "Credential offer URL scanned from a QR code or received by deep link. " +
		"Alternatively, this can be set with the following environment variable: " + credentialOfferEnvKey

	issuerURLFlagName  = "issuer-url"
	issuerURLEnvKey    = "IOWALLET_ISSUER_URL"
	issuerURLFlagUsage = "Credential issuer to start a wallet initiated flow with. Requires --" +
		trustAnchorURLFlagName + ". Alternatively, this can be set with the following environment variable: " +
		issuerURLEnvKey

	credentialIDsFlagName  = "credential-ids"
	credentialIDsEnvKey    = "IOWALLET_CREDENTIAL_IDS"
	credentialIDsFlagUsage = "Comma separated credential configuration ids to request from --" + issuerURLFlagName +
		". Alternatively, this can be set with the following environment variable: " + credentialIDsEnvKey

	txCodeFlagName  = "tx-code"
	txCodeEnvKey    = "IOWALLET_TX_CODE"
	txCodeFlagUsage = "Transaction code of a pre-authorized offer. Alternatively, this can be set with the " +
		"following environment variable: " + txCodeEnvKey

	idpHintFlagName  = "idp-hint"
	idpHintEnvKey    = "IOWALLET_IDP_HINT"
	idpHintFlagUsage = "Identity provider hint added to the authorization URL. Alternatively, this can be set " +
		"with the following environment variable: " + idpHintEnvKey

	pidFlagName  = "pid"
	pidEnvKey    = "IOWALLET_PID"
	pidFlagUsage = "PID SD-JWT presented when the issuer asks for it, or @path to a file holding it. " +
		"Alternatively, this can be set with the following environment variable: " + pidEnvKey

	pidKeyTagFlagName  = "pid-key-tag"
	pidKeyTagEnvKey    = "IOWALLET_PID_KEY_TAG"
	pidKeyTagFlagUsage = "Tag of the key the PID is bound to. Alternatively, this can be set with the " +
		"following environment variable: " + pidKeyTagEnvKey

	noBrowserFlagName  = "no-browser"
	noBrowserEnvKey    = "IOWALLET_NO_BROWSER"
	noBrowserFlagUsage = "Print the authorization URL instead of opening it. Alternatively, this can be set " +
		"with the following environment variable: " + noBrowserEnvKey
)

const (
	dpopKeyTag          = "dpop"
	credentialKeyPrefix = "credential-"
	defaultPIDKeyTag    = "pid"
)

type issueFlags struct {
	credentialOffer string
	issuerURL       string
	credentialIDs   []string
	txCode          string
	idpHint         string
	pid             string
	pidKeyTag       string
	noBrowser       bool
}

// issuedCredential is the output of the issue command for one credential.
type issuedCredential struct {
	ConfigurationID string                       `json:"credentialConfigurationId"`
	KeyTag          string                       `json:"keyTag"`
	Credential      string                       `json:"credential"`
	NotificationID  string                       `json:"notificationId,omitempty"`
	Verified        *issuance.VerifiedCredential `json:"verified"`
}

func NewIssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "obtains credentials from an offer or from a trusted issuer",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := getWalletFlags(cmd)
			if err != nil {
				return err
			}

			issue, err := getIssueFlags(cmd)
			if err != nil {
				return err
			}

			svc, err := initServices(cmd.Context(), flags)
			if err != nil {
				return fmt.Errorf("init services: %w", err)
			}
			defer svc.Close()

			credentials, err := runIssue(cmd.Context(), svc, issue)
			if err != nil {
				return err
			}

			return printJSON(cmd, credentials)
		},
	}

	addWalletFlags(cmd)

	cmd.Flags().String(credentialOfferFlagName, "", credentialOfferFlagUsage)
	cmd.Flags().String(issuerURLFlagName, "", issuerURLFlagUsage)
	cmd.Flags().String(credentialIDsFlagName, "", credentialIDsFlagUsage)
	cmd.Flags().String(txCodeFlagName, "", txCodeFlagUsage)
	cmd.Flags().String(idpHintFlagName, "", idpHintFlagUsage)
	cmd.Flags().String(pidFlagName, "", pidFlagUsage)
	cmd.Flags().String(pidKeyTagFlagName, defaultPIDKeyTag, pidKeyTagFlagUsage)
	cmd.Flags().String(noBrowserFlagName, "false", noBrowserFlagUsage)

	return cmd
}

func getIssueFlags(cmd *cobra.Command) (*issueFlags, error) {
	flags := &issueFlags{
		credentialOffer: optional(cmd, credentialOfferFlagName, credentialOfferEnvKey),
		issuerURL:       optional(cmd, issuerURLFlagName, issuerURLEnvKey),
		txCode:          optional(cmd, txCodeFlagName, txCodeEnvKey),
		idpHint:         optional(cmd, idpHintFlagName, idpHintEnvKey),
		pidKeyTag:       optional(cmd, pidKeyTagFlagName, pidKeyTagEnvKey),
	}

	if (flags.credentialOffer == "") == (flags.issuerURL == "") {
		return nil, fmt.Errorf("set either --%s or --%s", credentialOfferFlagName, issuerURLFlagName)
	}

	if ids := optional(cmd, credentialIDsFlagName, credentialIDsEnvKey); ids != "" {
		flags.credentialIDs = lo.Compact(lo.Map(strings.Split(ids, ","),
			func(id string, _ int) string { return strings.TrimSpace(id) }))
	}

	if flags.issuerURL != "" && len(flags.credentialIDs) == 0 {
		return nil, fmt.Errorf("--%s requires --%s", issuerURLFlagName, credentialIDsFlagName)
	}

	if flags.pidKeyTag == "" {
		flags.pidKeyTag = defaultPIDKeyTag
	}

	var err error

	if flags.pid, err = readValue(optional(cmd, pidFlagName, pidEnvKey)); err != nil {
		return nil, fmt.Errorf("read %s: %w", pidFlagName, err)
	}

	if flags.noBrowser, err = boolFlag(cmd, noBrowserFlagName, noBrowserEnvKey); err != nil {
		return nil, err
	}

	return flags, nil
}

// issueState carries what the grant step learned to the credential step.
type issueState struct {
	conf          *issuer.Config
	credentialIDs []string
	clientID      string
	token         *issuance.AccessTokenResult
}

func runIssue(ctx context.Context, svc *services, flags *issueFlags) ([]*issuedCredential, error) {
	if svc.flags.wia == "" {
		return nil, fmt.Errorf("--%s is required", wiaFlagName)
	}

	var (
		state *issueState
		err   error
	)

	if flags.credentialOffer != "" {
		state, err = acceptOffer(ctx, svc, flags)
	} else {
		state, err = authorizeWalletInitiated(ctx, svc, flags)
	}

	if err != nil {
		return nil, err
	}

	return obtainCredentials(ctx, svc, state)
}

func acceptOffer(ctx context.Context, svc *services, flags *issueFlags) (*issueState, error) {
	offers := svc.wallet.CredentialOffer()

	ref, err := offers.StartFlow(flags.credentialOffer)
	if err != nil {
		return nil, err
	}

	offer, err := offers.ResolveCredentialOffer(ctx, ref)
	if err != nil {
		return nil, err
	}

	conf, err := offers.EvaluateIssuerMetadataFromOffer(ctx, offer)
	if err != nil {
		return nil, err
	}

	grant, err := offers.SelectGrantType(offer)
	if err != nil {
		return nil, err
	}

	logger.Info("Credential offer accepted", logfields.WithCredentialIssuer(offer.CredentialIssuer),
		logfields.WithGrantType(grant.Type))

	if grant.Type == credentialoffer.GrantAuthorizationCode {
		return authorize(ctx, svc, flags, conf, offer.CredentialConfigurationIDs)
	}

	if grant.TxCode != nil && flags.txCode == "" {
		return nil, fmt.Errorf("the offer requires a transaction code, set --%s", txCodeFlagName)
	}

	clientID, err := walletClientID(ctx, svc)
	if err != nil {
		return nil, err
	}

	token, err := svc.wallet.Issuance().AuthorizePreAuthorizedAccess(ctx, conf, grant.PreAuthorizedCode,
		flags.txCode, svc.tokenContext())
	if err != nil {
		return nil, err
	}

	return &issueState{
		conf:          conf,
		credentialIDs: offer.CredentialConfigurationIDs,
		clientID:      clientID,
		token:         token,
	}, nil
}

func authorizeWalletInitiated(ctx context.Context, svc *services, flags *issueFlags) (*issueState, error) {
	if !svc.wallet.HasTrustAnchor() {
		return nil, fmt.Errorf("--%s requires --%s", issuerURLFlagName, trustAnchorURLFlagName)
	}

	conf, err := svc.wallet.EvaluateIssuerTrust(ctx, flags.issuerURL)
	if err != nil {
		return nil, err
	}

	return authorize(ctx, svc, flags, conf, flags.credentialIDs)
}

func authorize(
	ctx context.Context,
	svc *services,
	flags *issueFlags,
	conf *issuer.Config,
	credentialIDs []string,
) (*issueState, error) {
	iss := svc.wallet.Issuance()

	session, err := iss.StartUserAuthorization(ctx, conf, credentialIDs,
		issuance.ProofPreferences{Type: issuance.ProofTypeNone, IDPHinting: flags.idpHint},
		issuance.AuthorizationContext{
			WIACryptoContext:          svc.wiaContext(),
			WalletInstanceAttestation: svc.flags.wia,
			RedirectURI:               svc.flags.redirectURI,
		})
	if err != nil {
		return nil, err
	}

	var result *issuance.AuthorizationResult

	if session.ResponseMode == issuer.ResponseModeQuery {
		result, err = authorizeInBrowser(ctx, svc, flags, session)
	} else {
		result, err = authorizeWithPID(ctx, svc, flags, session)
	}

	if err != nil {
		return nil, err
	}

	token, err := iss.AuthorizeAccess(ctx, conf, result.Code, session.ClientID, session.RedirectURI,
		session.CodeVerifier, svc.tokenContext())
	if err != nil {
		return nil, err
	}

	return &issueState{
		conf:          conf,
		credentialIDs: credentialIDs,
		clientID:      session.ClientID,
		token:         token,
	}, nil
}

func authorizeInBrowser(
	ctx context.Context,
	svc *services,
	flags *issueFlags,
	session *issuance.AuthorizationSession,
) (*issuance.AuthorizationResult, error) {
	hub, err := svc.listenRedirects()
	if err != nil {
		return nil, err
	}

	authURL, err := svc.wallet.Issuance().BuildAuthorizationURL(session, flags.idpHint)
	if err != nil {
		return nil, err
	}

	if flags.noBrowser {
		fmt.Printf("Open the following URL to authorize the wallet:\n%s\n", authURL) //nolint:forbidigo
	} else if err = browser.OpenURL(authURL); err != nil {
		logger.Warn("Failed to open browser, open the authorization URL manually",
			log.WithError(err), log.WithURL(authURL))
	}

	redirectURL, err := redirect.NewWaiter(hub,
		redirect.WithTimeout(svc.flags.redirectTimeout),
		redirect.WithMetrics(svc.metrics),
	).Wait(ctx, session.RedirectURI)
	if err != nil {
		return nil, err
	}

	return svc.wallet.Issuance().CompleteUserAuthorizationWithQueryMode(redirectURL)
}

func authorizeWithPID(
	ctx context.Context,
	svc *services,
	flags *issueFlags,
	session *issuance.AuthorizationSession,
) (*issuance.AuthorizationResult, error) {
	if flags.pid == "" {
		return nil, fmt.Errorf("the issuer asks for a PID presentation, set --%s", pidFlagName)
	}

	iss := svc.wallet.Issuance()

	requestObject, err := iss.GetRequestedCredentialToBePresented(ctx, session)
	if err != nil {
		return nil, err
	}

	return iss.CompleteUserAuthorizationWithFormPostJWTMode(ctx, requestObject, session.IssuerConf,
		issuance.PresentationContext{
			WIACryptoContext: svc.wiaContext(),
			PID:              flags.pid,
			PIDCryptoContext: svc.keyStore.Context(flags.pidKeyTag),
		})
}

func obtainCredentials(ctx context.Context, svc *services, state *issueState) ([]*issuedCredential, error) {
	iss := svc.wallet.Issuance()

	out := make([]*issuedCredential, 0, len(state.credentialIDs))

	for _, id := range state.credentialIDs {
		keyTag := credentialKeyPrefix + id

		if _, err := cryptoctx.RegenerateKey(ctx, svc.keyStore, keyTag); err != nil {
			return nil, fmt.Errorf("generate credential key: %w", err)
		}

		credentialCtx := svc.keyStore.Context(keyTag)

		res, err := iss.ObtainCredential(ctx, state.conf, state.token, state.clientID,
			issuance.CredentialRequest{ConfigurationID: id},
			issuance.CredentialContext{
				DPoPCryptoContext:       svc.keyStore.Context(dpopKeyTag),
				CredentialCryptoContext: credentialCtx,
			})
		if err != nil {
			return nil, svc.discardKey(ctx, keyTag, err)
		}

		verified, err := iss.VerifyAndParseCredential(ctx, state.conf, res.Credential, id,
			issuance.VerifyContext{
				CredentialCryptoContext: credentialCtx,
				IgnoreMissingAttributes: svc.flags.allowMissingAttributes,
			}, svc.rootCertificate())
		if err != nil {
			return nil, svc.discardKey(ctx, keyTag, err)
		}

		logger.Info("Credential obtained", logfields.WithCredentialConfigurationID(id),
			logfields.WithCredentialFormat(res.Format))

		out = append(out, &issuedCredential{
			ConfigurationID: id,
			KeyTag:          keyTag,
			Credential:      res.Credential,
			NotificationID:  res.NotificationID,
			Verified:        verified,
		})
	}

	return out, nil
}

func (s *services) tokenContext() issuance.TokenContext {
	return issuance.TokenContext{
		WalletInstanceAttestation: s.flags.wia,
		WIACryptoContext:          s.wiaContext(),
		KeyStore:                  s.keyStore,
		DPoPKeyTag:                dpopKeyTag,
	}
}

func (s *services) discardKey(ctx context.Context, tag string, cause error) error {
	if err := cryptoctx.DeleteKeyIfExists(ctx, s.keyStore, tag); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

func (s *services) rootCertificate() *x509.Certificate {
	if s.anchor == nil {
		return nil
	}

	return s.anchor.RootCertificate()
}

func walletClientID(ctx context.Context, svc *services) (string, error) {
	pub, err := svc.wiaContext().PublicKey(ctx)
	if err != nil {
		return "", fmt.Errorf("get wallet instance key: %w", err)
	}

	return pub.KeyID, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
