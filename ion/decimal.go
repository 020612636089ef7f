// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package ion

import "math/big"

// Decimal is Ion's arbitrary-precision decimal: value ==
// Coefficient * 10^Exponent. This package treats decimal/big.Int
// math as an external numeric kernel (per the core's scope) and
// leans on math/big to provide it, since none of the reference
// repositories carry a dedicated decimal library.
type Decimal struct {
	Coefficient *big.Int
	Exponent    int
	// NegativeZero distinguishes Ion's "negative zero" decimal
	// (coefficient 0, sign bit set) from ordinary zero; big.Int
	// has no signed-zero representation so it must be carried
	// alongside the coefficient.
	NegativeZero bool
}

// Equal compares two decimals for bit-level (IonEq) equality:
// same coefficient, same exponent, same zero sign.
func (d Decimal) Equal(o Decimal) bool {
	if d.NegativeZero != o.NegativeZero {
		return false
	}
	if d.Coefficient == nil || o.Coefficient == nil {
		return d.Coefficient == o.Coefficient
	}
	return d.Exponent == o.Exponent && d.Coefficient.Cmp(o.Coefficient) == 0
}

func (d Decimal) String() string {
	if d.Coefficient == nil {
		return "0."
	}
	sign := ""
	if d.NegativeZero {
		sign = "-"
	}
	return sign + d.Coefficient.String() + "e" + bigExpSuffix(d.Exponent)
}

func bigExpSuffix(exp int) string {
	return big.NewInt(int64(exp)).String()
}
