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

import "github.com/sneller-ion/ion-go/date"

// Precision records how much of a Timestamp's field list was
// present on the wire, since Ion timestamps may truncate at any
// field boundary (year-only, year+month, etc).
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionMinute
	PrecisionSecond
	PrecisionFraction
)

// Timestamp is Ion's timestamp type: a calendar time plus a known
// or unknown UTC offset and a precision marker. Calendar math is
// delegated to date.Time, the numeric kernel this core assumes.
type Timestamp struct {
	T             date.Time
	OffsetMinutes int
	OffsetKnown   bool
	Precision     Precision
	// FractionExponent/FractionCoefficient represent the
	// fractional-second component as a decimal when Precision is
	// PrecisionFraction, preserving precision that a plain
	// nanosecond count would lose (e.g. trailing zeros).
	FractionExponent    int
	FractionCoefficient int64
}

// Equal implements IonEq for timestamps: same instant, same
// declared precision and offset-knowledge (Ion timestamps with
// different offsets that denote the same instant are NOT ion-equal
// unless their offsets also match, since the offset is part of the
// literal's identity).
func (t Timestamp) Equal(o Timestamp) bool {
	return t.T.Equal(o.T) &&
		t.OffsetMinutes == o.OffsetMinutes &&
		t.OffsetKnown == o.OffsetKnown &&
		t.Precision == o.Precision
}
