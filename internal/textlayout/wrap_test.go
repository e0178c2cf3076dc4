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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Every rune is 10 units wide at size 20.
var tenPerRune = FontSpec{Family: "Test", Size: 20}

func TestWrapGreedy(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 100, []string{""}},
		{"whitespace only", "   ", 100, []string{""}},
		{"fits", "deep clean", 100, []string{"deep clean"}},
		{"breaks on space", "deep clean and polish", 100, []string{"deep clean", "and polish"}},
		{"exact width", "abcde fghij", 110, []string{"abcde fghij"}},
		{"collapses spaces", "a   b", 100, []string{"a b"}},
		{"long word whole", "x supercalifragilistic y", 100, []string{"x", "supercalifragilistic", "y"}},
		{"hard break", "line one\nline two", 200, []string{"line one", "line two"}},
		{"blank paragraph kept", "a\n\nb", 200, []string{"a", "", "b"}},
		{"trailing newline dropped", "short text\n", 200, []string{"short text"}},
		{"trailing crlf dropped", "a\r\nb\r\n\r\n", 200, []string{"a", "b"}},
		{"only newline", "\n", 200, []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Wrap(FixedAdvance{}, tc.text, tc.width, tenPerRune, WrapOptions{})
			if err != nil {
				t.Fatalf("Wrap: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Wrap(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestWrapHyphenate(t *testing.T) {
	got, err := Wrap(FixedAdvance{}, "go supercalifragilistic", 100, tenPerRune, WrapOptions{Hyphenate: true})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	want := []string{"go", "supercali-", "fragilist-", "ic"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hyphenated wrap mismatch (-want +got):\n%s", diff)
	}
	// the remainder keeps accepting words on its line
	got, _ = Wrap(FixedAdvance{}, "abcdefghijkl mn", 100, tenPerRune, WrapOptions{Hyphenate: true})
	if diff := cmp.Diff([]string{"abcdefghi-", "jkl mn"}, got); diff != "" {
		t.Fatalf("remainder mismatch (-want +got):\n%s", diff)
	}
	// no room for even one rune and a hyphen: the word stays whole
	got, _ = Wrap(FixedAdvance{}, "abc", 15, tenPerRune, WrapOptions{Hyphenate: true})
	if diff := cmp.Diff([]string{"abc"}, got); diff != "" {
		t.Fatalf("narrow mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapFitInvariantAndDeterminism(t *testing.T) {
	m := NewFaceMeasurer(builtinLibrary(t))
	spec := FontSpec{Family: BuiltinFamily, Size: 22}
	text := "Complete hygiene session with ultrasonic scaling, airflow polishing and fluoride varnish for sensitive teeth"
	for _, width := range []float64{120, 260, 480} {
		a, err := Wrap(m, text, width, spec, WrapOptions{})
		if err != nil {
			t.Fatalf("Wrap: %v", err)
		}
		b, _ := Wrap(m, text, width, spec, WrapOptions{})
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("Wrap not deterministic at width %v:\n%s", width, diff)
		}
		if strings.Join(a, " ") != text {
			t.Fatalf("wrapped lines lost words: %q", a)
		}
		for _, l := range a {
			w, _ := m.Measure(l, spec)
			if w > width && strings.Contains(l, " ") {
				t.Fatalf("line %q is %v wide, exceeds %v", l, w, width)
			}
		}
	}
}

func TestWrapErrors(t *testing.T) {
	if _, err := Wrap(FixedAdvance{}, "a", 0, tenPerRune, WrapOptions{}); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("expected ErrInvalidWidth, got %v", err)
	}
	boom := errors.New("boom")
	failing := MeasurerFunc(func(string, FontSpec) (float64, error) { return 0, boom })
	if _, err := Wrap(failing, "a b", 100, tenPerRune, WrapOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected measurer error to propagate, got %v", err)
	}
	// empty text never measures, so a failing measurer is not consulted
	if got, err := Wrap(failing, "", 100, tenPerRune, WrapOptions{}); err != nil || len(got) != 1 {
		t.Fatalf("empty text = %v, %v", got, err)
	}
}

func TestWidest(t *testing.T) {
	w, err := Widest(FixedAdvance{}, []string{"ab", "", "abcd"}, tenPerRune)
	if err != nil || w != 40 {
		t.Fatalf("Widest = %v, %v; want 40", w, err)
	}
}
