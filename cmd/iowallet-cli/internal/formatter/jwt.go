/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package formatter

import (
	"fmt"
	"io"
	"strings"
)

// JWTFormatter prints JWT bodies of traced HTTP exchanges as is.
type JWTFormatter struct{}

// Match application/jwt and every +jwt structured suffix.
func (j *JWTFormatter) Match(mediatype string) bool {
	return strings.HasPrefix(mediatype, "application/jwt") || strings.HasSuffix(mediatype, "+jwt")
}

// Format JWT content.
func (j *JWTFormatter) Format(w io.Writer, src []byte) error {
	_, err := w.Write(src)
	if err != nil {
		return fmt.Errorf("unable to write JWT: %w", err)
	}

	return nil
}
