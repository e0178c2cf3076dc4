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

// Role identifies a piece of text on a price card page. Each role has a fixed weight and
// slant; the size comes from the layout's font configuration.
type Role string

const (
	RoleItemName       Role = "item-name"
	RoleDescription    Role = "item-description"
	RolePrice          Role = "price"
	RoleBadge          Role = "badge"
	RoleCategoryHeader Role = "category-header"
	RolePageHeader     Role = "page-header"
	RoleFooter         Role = "footer"
)

// TextStyle is the typographic preset for a role.
type TextStyle struct {
	Role   Role
	Weight int
	Italic bool
}

var builtinStyles = map[Role]TextStyle{
	RoleItemName:       {Role: RoleItemName, Weight: WeightBold},
	RoleDescription:    {Role: RoleDescription, Weight: WeightRegular},
	RolePrice:          {Role: RolePrice, Weight: WeightBold},
	RoleBadge:          {Role: RoleBadge, Weight: WeightBold},
	RoleCategoryHeader: {Role: RoleCategoryHeader, Weight: WeightBold},
	RolePageHeader:     {Role: RolePageHeader, Weight: WeightBold},
	RoleFooter:         {Role: RoleFooter, Weight: WeightRegular, Italic: true},
}

// GetStyle returns the preset for role. The second return value is false if the role is unknown.
func GetStyle(role Role) (TextStyle, bool) {
	s, ok := builtinStyles[role]
	return s, ok
}

// ListStyles lists the roles in drawing order.
func ListStyles() []Role {
	return []Role{RolePageHeader, RoleCategoryHeader, RoleItemName, RoleBadge, RolePrice, RoleDescription, RoleFooter}
}

// Spec builds the FontSpec for this style in the given family and size.
func (s TextStyle) Spec(family string, size float64) FontSpec {
	return FontSpec{Family: family, Size: size, Weight: s.Weight, Italic: s.Italic}
}

// SpecFor is GetStyle(role).Spec with regular weight for unknown roles.
func SpecFor(role Role, family string, size float64) FontSpec {
	s, ok := builtinStyles[role]
	if !ok {
		s = TextStyle{Role: role, Weight: WeightRegular}
	}
	return s.Spec(family, size)
}
