/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protocol

import (
	"fmt"

	"github.com/samber/lo"
)

// Version is a supported revision of the wallet technical rules.
type Version string

const (
	V1_0_0 Version = "1.0.0" //nolint:revive,stylecheck
	V1_3_3 Version = "1.3.3" //nolint:revive,stylecheck
)

// Supported lists every version the engine implements.
func Supported() []Version {
	return []Version{V1_0_0, V1_3_3}
}

// ParseVersion validates s against the supported versions.
func ParseVersion(s string) (Version, error) {
	v := Version(s)
	if !lo.Contains(Supported(), v) {
		return "", fmt.Errorf("unsupported version %q, expected one of %v", s, Supported())
	}

	return v, nil
}

func (v Version) String() string {
	return string(v)
}
