/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package common holds the flags and setup shared by the wallet commands.
package common

import (
	"strings"

	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/iowallet/internal/logfields"
)

const (
	LogLevelFlagName      = "log-level"
	LogLevelEnvKey        = "IOWALLET_LOG_LEVEL"
	LogLevelFlagShorthand = "l"

	LogLevelPrefixFlagUsage = "Logging levels, either a single default level or per module levels followed by " +
		"the default, for example iowallet-trust=DEBUG:iowallet-issuance=WARNING:INFO. " +
		"Supported levels are: CRITICAL, ERROR, WARNING, INFO, DEBUG. Defaults to INFO. " +
		"Alternatively, this can be set with the following environment variable: " + LogLevelEnvKey
)

var supportedLevels = []log.Level{log.PANIC, log.FATAL, log.ERROR, log.WARNING, log.INFO, log.DEBUG}

// SetDefaultLogLevel sets the level of every module without a level of its own. An unknown
// level falls back to INFO.
func SetDefaultLogLevel(logger *log.Log, userLogLevel string) {
	level, err := log.ParseLevel(userLogLevel)
	if err != nil {
		names := lo.Map(supportedLevels, func(l log.Level, _ int) string { return l.String() })

		logger.Warn("Unknown log level, defaulting to INFO. Supported levels: "+strings.Join(names, ", "),
			logfields.WithUserLogLevel(userLogLevel))

		level = log.INFO
	}

	if level == log.DEBUG {
		logger.Info("Debug logging prints request objects and credentials")
	}

	log.SetLevel("", level)
}

// SetLogLevels applies a module spec such as iowallet-trust=DEBUG:INFO, or a single default
// level. An empty spec keeps the current levels.
func SetLogLevels(logger *log.Log, spec string) {
	switch {
	case spec == "":
		return
	case !strings.ContainsAny(spec, ":="):
		SetDefaultLogLevel(logger, spec)
	default:
		if err := log.SetSpec(spec); err != nil {
			logger.Warn("Invalid log spec, keeping current levels", log.WithError(err),
				logfields.WithUserLogLevel(spec))
		}
	}
}
