/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"fmt"

	"github.com/trustbloc/iowallet/pkg/issuer"
	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// Stage is the position of an authorization session in the flow.
type Stage int

const (
	StageStart Stage = iota
	StageTrustEvaluated
	StagePushed
	StageAuthorizationCodeReceived
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageTrustEvaluated:
		return "trust-evaluated"
	case StagePushed:
		return "pushed"
	case StageAuthorizationCodeReceived:
		return "authorization-code-received"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Authorization detail types.
const (
	AuthorizationDetailTypeCredential    = "openid_credential"
	AuthorizationDetailTypeDocumentProof = "it_l2+document_proof"

	challengeMethodMRTD = "mrtd+ias"
)

// AuthorizationDetail is an entry of authorization_details, in the PAR request and in the
// token response.
type AuthorizationDetail struct {
	Type                      string   `json:"type"`
	CredentialConfigurationID string   `json:"credential_configuration_id,omitempty"`
	CredentialIdentifiers     []string `json:"credential_identifiers,omitempty"`
	IDPHinting                string   `json:"idphinting,omitempty"`
	ChallengeMethod           string   `json:"challenge_method,omitempty"`
	ChallengeRedirectURI      string   `json:"challenge_redirect_uri,omitempty"`
}

// AuthorizationSession carries the state of a user authorization from the pushed request to
// the token exchange. Stages only move forward.
type AuthorizationSession struct {
	IssuerConf            *issuer.Config
	ClientID              string
	CodeVerifier          string
	CredentialDefinitions []AuthorizationDetail
	IssuerRequestURI      string
	ResponseMode          string
	RedirectURI           string
	State                 string
	Code                  string

	stage Stage
}

// NewAuthorizationSession starts a session for a trusted issuer configuration.
func NewAuthorizationSession(conf *issuer.Config) *AuthorizationSession {
	s := &AuthorizationSession{IssuerConf: conf}
	if conf != nil {
		s.stage = StageTrustEvaluated
	}

	return s
}

// Stage returns the current stage.
func (s *AuthorizationSession) Stage() Stage {
	return s.stage
}

func (s *AuthorizationSession) advance(to Stage) error {
	if to <= s.stage {
		return walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
			fmt.Errorf("cannot move authorization session from %s to %s", s.stage, to))
	}

	s.stage = to

	return nil
}

// Authorize records the authorization code of result. The state of result must match the
// state sent in the pushed request.
func (s *AuthorizationSession) Authorize(result *AuthorizationResult) error {
	if s.stage != StagePushed {
		return walleterr.NewAuthorizationError(walleterr.ReasonInvalidResponse,
			fmt.Errorf("authorization session is at stage %s, expected %s", s.stage, StagePushed))
	}

	if s.State != "" && result.State != s.State {
		return walleterr.NewAuthorizationError(walleterr.ReasonStateMismatch,
			fmt.Errorf("authorization response state does not match the request"))
	}

	if err := s.advance(StageAuthorizationCodeReceived); err != nil {
		return err
	}

	s.Code = result.Code

	return nil
}

// CredentialConfigurationIDs returns the configuration ids requested in the session.
func (s *AuthorizationSession) CredentialConfigurationIDs() []string {
	var ids []string

	for _, d := range s.CredentialDefinitions {
		if d.Type == AuthorizationDetailTypeCredential {
			ids = append(ids, d.CredentialConfigurationID)
		}
	}

	return ids
}
