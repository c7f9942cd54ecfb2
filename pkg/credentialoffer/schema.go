/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credentialoffer

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/credential_offer.json
var offerSchema []byte

type validator struct {
	schema *gojsonschema.Schema
}

func newValidator() *validator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(offerSchema))
	if err != nil {
		panic(fmt.Sprintf("compile credential offer schema: %v", err))
	}

	return &validator{schema: schema}
}

// validate checks the JSON document doc against the credential offer schema.
func (v *validator) validate(doc []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("loader error: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("validation error: [%s]", strings.Join(
			lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string { return e.String() }), "; "))
	}

	return nil
}
