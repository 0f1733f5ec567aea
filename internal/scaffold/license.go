// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scaffold

import (
	"fmt"
	"sort"
	"strings"
)

// Placeholders are the fields GitHub license bodies leave for the user.
var Placeholders = []string{"year", "fullname", "project", "email", "projecturl", "description"}

var paramAliases = map[string]string{
	"copyright-holders": "fullname",
	"copyright-holder":  "fullname",
	"author":            "fullname",
	"name":              "fullname",
}

// ParseParams turns key=value pairs into a map keyed by placeholder name.
// Aliases are folded into their placeholder.
func ParseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		if alias, ok := paramAliases[k]; ok {
			k = alias
		}
		params[k] = v
	}
	return params, nil
}

// FillReport describes what Fill did.
type FillReport struct {
	// Filled placeholders, sorted.
	Filled []string
	// Unused parameters that match nothing in the body, sorted.
	Unused []string
	// Missing placeholders still present in the result, in Placeholders
	// order.
	Missing []string
}

// Fill replaces [placeholder] markers in body with values from params.
func Fill(body string, params map[string]string) (string, FillReport) {
	var report FillReport

	for k, v := range params {
		marker := "[" + k + "]"
		if !strings.Contains(body, marker) {
			report.Unused = append(report.Unused, k)
			continue
		}
		body = strings.ReplaceAll(body, marker, v)
		report.Filled = append(report.Filled, k)
	}
	sort.Strings(report.Filled)
	sort.Strings(report.Unused)

	report.Missing = Missing(body)
	return body, report
}

// Missing lists the known placeholders still present in body.
func Missing(body string) []string {
	var missing []string
	for _, p := range Placeholders {
		if strings.Contains(body, "["+p+"]") {
			missing = append(missing, p)
		}
	}
	return missing
}
