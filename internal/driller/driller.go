// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var indexRegex = regexp.MustCompile(`^(.*?)\[(\d+)\]$`)

// Driller walks path through doc one segment at a time. A segment may carry an
// explicit index (items[2]). A single element array is stepped through
// transparently so that statements[0].effect and statements.effect are the
// same thing when there is only one statement.
func Driller(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)
	if path == "" {
		return current
	}

	for _, segment := range strings.Split(path, ".") {
		if !current.Exists() {
			return gjson.Result{}
		}

		if current.IsArray() && len(current.Array()) == 1 {
			current = current.Array()[0]
		}

		key := segment
		index := -1
		if m := indexRegex.FindStringSubmatch(segment); m != nil {
			key = m[1]
			index, _ = strconv.Atoi(m[2])
		}

		if key != "" {
			current = current.Get(gjson.Escape(key))
		}

		if index >= 0 {
			if !current.IsArray() {
				return gjson.Result{}
			}
			items := current.Array()
			if index >= len(items) {
				return gjson.Result{}
			}
			current = items[index]
		}
	}

	if current.IsArray() && len(current.Array()) == 1 {
		return current.Array()[0]
	}

	return current
}
