/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWidth is returned by Wrap for a non-positive width.
var ErrInvalidWidth = errors.New("invalid wrap width")

// WrapOptions tunes Wrap.
type WrapOptions struct {
	// Hyphenate splits words wider than the line at the longest prefix that still
	// fits with a trailing hyphen. Without it such a word is emitted whole on its own line.
	Hyphenate bool
}

// Wrap breaks text into lines no wider than maxWidth as measured by m. Words are broken
// greedily on spaces; a newline always starts a new line. The result is never empty:
// empty text yields one empty line. Trailing newlines are ignored. Wrap keeps no state between calls.
func Wrap(m Measurer, text string, maxWidth float64, spec FontSpec, opts WrapOptions) ([]string, error) {
	if !(maxWidth > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, maxWidth)
	}
	w := wrapper{m: m, max: maxWidth, spec: spec, hyphenate: opts.Hyphenate}
	var lines []string
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, para := range strings.Split(text, "\n") {
		pl, err := w.paragraph(para)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pl...)
	}
	return lines, nil
}

type wrapper struct {
	m         Measurer
	max       float64
	spec      FontSpec
	hyphenate bool
}

func (w wrapper) fits(s string) (bool, error) {
	width, err := w.m.Measure(s, w.spec)
	if err != nil {
		return false, fmt.Errorf("measure %q: %w", s, err)
	}
	return width <= w.max, nil
}

func (w wrapper) paragraph(text string) ([]string, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}, nil
	}
	var lines []string
	cur := ""
	for _, word := range words {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		ok, err := w.fits(candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
			if ok, err = w.fits(word); err != nil {
				return nil, err
			}
			if ok {
				cur = word
				continue
			}
		}
		// word is wider than the line on its own
		if !w.hyphenate {
			lines = append(lines, word)
			continue
		}
		pieces, rest, err := w.split(word)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pieces...)
		cur = rest
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines, nil
}

// split cuts word into hyphenated pieces that fit and returns them with the fitting
// remainder. If not even one rune plus a hyphen fits, the rest is emitted whole.
func (w wrapper) split(word string) (pieces []string, rest string, err error) {
	rest = word
	for {
		ok, err := w.fits(rest)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return pieces, rest, nil
		}
		runes := []rune(rest)
		n, err := w.longestPrefix(runes)
		if err != nil {
			return nil, "", err
		}
		if n == 0 {
			return append(pieces, rest), "", nil
		}
		pieces = append(pieces, string(runes[:n])+"-")
		rest = string(runes[n:])
	}
}

// longestPrefix binary-searches the largest n < len(runes) for which runes[:n]+"-" fits.
func (w wrapper) longestPrefix(runes []rune) (int, error) {
	lo, hi := 0, len(runes)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		ok, err := w.fits(string(runes[:mid]) + "-")
		if err != nil {
			return 0, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}

// Widest returns the largest measured width among lines.
func Widest(m Measurer, lines []string, spec FontSpec) (float64, error) {
	var widest float64
	for _, l := range lines {
		if l == "" {
			continue
		}
		w, err := m.Measure(l, spec)
		if err != nil {
			return 0, err
		}
		if w > widest {
			widest = w
		}
	}
	return widest, nil
}
