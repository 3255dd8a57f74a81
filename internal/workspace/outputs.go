// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package workspace

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/cacheutil"
)

// Mask replaces secret values wherever outputs are shown or cached.
const Mask = "[secret]"

// Output is one stack output.
type Output struct {
	Value  any  `json:"value"`
	Secret bool `json:"secret"`
}

// Result is what an operation leaves behind. Summary counts resources by
// operation (create, update, same, delete...).
type Result struct {
	Outputs map[string]Output
	Summary map[string]int
}

// Masked returns o with a secret value replaced by Mask.
func (o Output) Masked() Output {
	if o.Secret {
		return Output{Value: Mask, Secret: true}
	}
	return o
}

// String returns the output value as text. Secrets are masked.
func (o Output) String() string {
	switch v := o.Masked().Value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// Rows flattens outputs into name/value/secret rows ordered by name. Secret
// values are masked unless showSecrets is set.
func Rows(outputs map[string]Output, showSecrets bool) []map[string]any {
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]map[string]any, 0, len(names))
	for _, name := range names {
		o := outputs[name]
		if !showSecrets {
			o = o.Masked()
		}
		rows = append(rows, map[string]any{
			"name":   name,
			"value":  o.Value,
			"secret": o.Secret,
		})
	}
	return rows
}

// SummaryRows flattens an operation summary into op/count rows.
func SummaryRows(summary map[string]int) []map[string]any {
	ops := make([]string, 0, len(summary))
	for op := range summary {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	rows := make([]map[string]any, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, map[string]any{"op": op, "count": summary[op]})
	}
	return rows
}

func cacheDirs(project string) []string {
	return []string{cacheutil.OutputsDir, project}
}

// WriteCache stores outputs as the last known outputs of project/stack.
// Secret values are masked before they reach the disk.
func WriteCache(project, stack string, outputs map[string]Output) error {
	masked := make(map[string]Output, len(outputs))
	for k, v := range outputs {
		masked[k] = v.Masked()
	}

	data, err := json.Marshal(masked)
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	return cacheutil.Write(cacheDirs(project), stack, data)
}

// ReadCache returns the last known outputs of project/stack.
func ReadCache(project, stack string) (map[string]Output, bool, error) {
	entry, ok := cacheutil.Read(cacheDirs(project), stack)
	if !ok {
		return nil, false, nil
	}

	var outputs map[string]Output
	if err := json.Unmarshal(entry.Data, &outputs); err != nil {
		return nil, false, fmt.Errorf("corrupt output cache %s: %w", entry.Path, err)
	}
	return outputs, true, nil
}
