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

import "testing"

func TestBuiltinStyles(t *testing.T) {
	names := ListStyles()
	if len(names) != len(builtinStyles) {
		t.Fatalf("ListStyles() = %v, want %d roles", names, len(builtinStyles))
	}
	for _, r := range names {
		if _, ok := GetStyle(r); !ok {
			t.Fatalf("%s style missing", r)
		}
	}
	if !SpecFor(RoleItemName, "Go", 20).Bold() {
		t.Fatalf("item names should be bold")
	}
	if SpecFor(RoleDescription, "Go", 20).Bold() {
		t.Fatalf("descriptions should be regular")
	}
	if got := SpecFor(Role("unknown"), "Go", 12); got.Weight != WeightRegular || got.Size != 12 {
		t.Fatalf("unknown role spec = %+v", got)
	}
}
