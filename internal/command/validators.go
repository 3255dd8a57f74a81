// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/output"
)

var stackNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-/]+$`)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// StackNameValidator accepts the characters Pulumi allows in project and
// stack names, including org/project/stack paths.
func StackNameValidator(value any) error {
	if !stackNameRegex.MatchString(value.(string)) {
		return fmt.Errorf("%q is not a valid name", value)
	}
	return nil
}

// BackendValidator accepts an empty value or a URL with a supported scheme.
func BackendValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	switch u.Scheme {
	case "file", "s3", "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
}

// ShellValidator accepts the shells completion scripts exist for.
func ShellValidator(value any) error {
	switch value.(string) {
	case "", "bash", "zsh":
		return nil
	default:
		return fmt.Errorf("unsupported shell %q; use bash or zsh", value)
	}
}
