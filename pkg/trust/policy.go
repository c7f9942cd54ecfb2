/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trust

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/samber/lo"

	"github.com/trustbloc/iowallet/pkg/walleterr"
)

// Metadata policy operators, applied in this order.
const (
	policyValue      = "value"
	policyAdd        = "add"
	policyDefault    = "default"
	policyOneOf      = "one_of"
	policySubsetOf   = "subset_of"
	policySupersetOf = "superset_of"
	policyEssential  = "essential"
)

type parameterPolicy map[string]interface{}

// ApplyMetadataPolicy applies a superior's metadata_policy to the metadata of its subordinate
// and returns the resulting metadata. Both arguments are keyed by entity type.
func ApplyMetadataPolicy(metadata, policy json.RawMessage) (json.RawMessage, error) {
	if len(policy) == 0 {
		return metadata, nil
	}

	md := map[string]map[string]interface{}{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &md); err != nil {
			return nil, policyError(fmt.Errorf("decode metadata: %w", err))
		}
	}

	var pol map[string]map[string]parameterPolicy
	if err := json.Unmarshal(policy, &pol); err != nil {
		return nil, policyError(fmt.Errorf("decode metadata_policy: %w", err))
	}

	for entityType, params := range pol {
		values, ok := md[entityType]
		if !ok {
			continue
		}

		for _, name := range sortedKeys(params) {
			if err := applyParameterPolicy(values, name, params[name]); err != nil {
				return nil, policyError(fmt.Errorf("%s.%s: %w", entityType, name, err)).
					WithIncorrectValue(entityType + "." + name)
			}
		}
	}

	out, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	return out, nil
}

//nolint:gocyclo
func applyParameterPolicy(values map[string]interface{}, name string, p parameterPolicy) error {
	if v, ok := p[policyValue]; ok {
		if v == nil {
			delete(values, name)
		} else {
			values[name] = v
		}
	}

	if v, ok := p[policyAdd]; ok {
		values[name] = union(asList(values[name]), asList(v))
	}

	if v, ok := p[policyDefault]; ok {
		if _, present := values[name]; !present {
			values[name] = v
		}
	}

	current, present := values[name]

	if v, ok := p[policyOneOf]; ok && present {
		if !containsValue(asList(v), current) {
			return fmt.Errorf("value %v is not one of %v", current, v)
		}
	}

	if v, ok := p[policySubsetOf]; ok && present {
		allowed := asList(v)

		subset := lo.Filter(asList(current), func(item interface{}, _ int) bool {
			return containsValue(allowed, item)
		})
		if len(subset) == 0 {
			delete(values, name)
		} else {
			values[name] = subset
		}
	}

	if v, ok := p[policySupersetOf]; ok && present {
		have := asList(values[name])

		for _, required := range asList(v) {
			if !containsValue(have, required) {
				return fmt.Errorf("value %v is not a superset of %v", values[name], v)
			}
		}
	}

	if essential, _ := p[policyEssential].(bool); essential {
		if _, ok := values[name]; !ok {
			return fmt.Errorf("essential parameter is missing")
		}
	}

	return nil
}

func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}

func union(a, b []interface{}) []interface{} {
	out := append([]interface{}{}, a...)

	for _, item := range b {
		if !containsValue(out, item) {
			out = append(out, item)
		}
	}

	return out
}

func containsValue(list []interface{}, v interface{}) bool {
	return lo.ContainsBy(list, func(item interface{}) bool {
		return reflect.DeepEqual(item, v)
	})
}

func sortedKeys(m map[string]parameterPolicy) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)

	return keys
}

func policyError(err error) *walleterr.Error {
	return walleterr.NewTrustChainVerificationError(walleterr.ReasonPolicyViolation, err)
}
