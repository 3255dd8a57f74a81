// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/attrs"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/driller"
)

// EnvDelim overrides the "," between filter expressions, for targets that
// contain commas themselves.
const EnvDelim = "WEBSTACK_FILTER_DELIM"

// filterRegex splits an expression into key, operand and target. Operands are
// one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid expressions are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		operand := parts[2]
		negate := strings.HasPrefix(operand, "!")
		if negate {
			operand = strings.TrimPrefix(operand, "!")
		}

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: operand,
			Target:  parts[3],
		})
	}

	return filters
}

// FilterRows returns the rows matching every expression in spec, projected
// onto cols. Filter keys are matched against column output keys first and are
// otherwise treated as paths into the row. With no cols the rows are returned
// whole.
func FilterRows(rows []map[string]any, cols attrs.AttrList, spec string) ([]map[string]any, error) {
	filters := BuildFilters(spec)

	result := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		doc, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row: %w", err)
		}

		if !applyFilters(string(doc), cols, filters) {
			continue
		}

		if len(cols) == 0 {
			result = append(result, row)
			continue
		}

		projected := make(map[string]any, len(cols))
		for _, col := range cols {
			projected[col.OutputKey] = driller.Driller(string(doc), col.Key).Value()
		}
		result = append(result, projected)
	}

	return result, nil
}

// applyFilters returns true if doc matches all of filters.
func applyFilters(doc string, cols attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := filter.Key
		for _, col := range cols {
			if col.OutputKey == filter.Key {
				key = col.Key
				break
			}
		}

		value := driller.Driller(doc, key)
		if !value.Exists() || value.Type == gjson.Null {
			return false
		}

		if !checkValue(value, filter) {
			return false
		}
	}

	return true
}

// checkValue dispatches on the JSON type of value.
func checkValue(value gjson.Result, filter Filter) bool {
	switch value.Type {
	case gjson.String, gjson.True, gjson.False:
		return checkStringOperand(value.String(), filter)
	case gjson.Number:
		if strings.Contains("=<>", filter.Operand) {
			return checkNumericOperand(value.Float(), filter)
		}
		return checkStringOperand(value.Raw, filter)
	case gjson.JSON:
		if filter.Operand == "@" {
			return checkContainsOperand(value.Value(), filter)
		}
		return checkStringOperand(value.Raw, filter)
	default:
		return false
	}
}

// checkContainsOperand evaluates a membership filter (operand '@') against
// array elements or object keys.
func checkContainsOperand(value any, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprint(item) == filter.Target {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Target]
		return found == !filter.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand compares value against the filter target numerically.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison filter against value.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Target == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Target) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Target) == !filter.Negate
	case ">":
		return value > filter.Target == !filter.Negate
	case "<":
		return value < filter.Target == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Target) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Target, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Target)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}
