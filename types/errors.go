// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package types

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidInput is matched (errors.Is) by every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a single rejected field of a component or request.
type InvalidInputError struct {
	Component string
	Field     string
	Reason    string
}

func (e *InvalidInputError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s %s", e.Component, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalidf returns an InvalidInputError for the given component and field.
func Invalidf(component, field, format string, args ...interface{}) error {
	return &InvalidInputError{
		Component: component,
		Field:     field,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// RequireFinite rejects NaN and infinite values.
func RequireFinite(component, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalidf(component, field, "must be a finite number, got %g", v)
	}
	return nil
}

func requireNonNegative(component, field string, v float64) error {
	if err := RequireFinite(component, field, v); err != nil {
		return err
	}
	if v < 0 {
		return Invalidf(component, field, "must be >= 0, got %g", v)
	}
	return nil
}

func requirePositive(component, field string, v float64) error {
	if err := RequireFinite(component, field, v); err != nil {
		return err
	}
	if v <= 0 {
		return Invalidf(component, field, "must be > 0, got %g", v)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
