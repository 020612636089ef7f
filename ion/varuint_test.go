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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var varUintSamples = []uint64{
	0, 1, 2, 127, 128, 129, 0x3fff, 0x4000, 0x4001,
	0x1fffff, 0x200000, 1<<35 - 1, 1 << 35,
	1<<56 - 1, 1 << 56, 1<<63 - 1, 1 << 63,
	math.MaxUint64,
}

func TestVarUint10RoundTrip(t *testing.T) {
	for _, v := range varUintSamples {
		buf := writeVarUint10(nil, v)
		require.Equal(t, varUint10Size(v), len(buf))
		n, got, err := readVarUint10(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestVarUint11RoundTrip(t *testing.T) {
	for _, v := range varUintSamples {
		buf := writeVarUint11(nil, v)
		require.Equal(t, varUint11Size(v), len(buf))
		n, got, err := readVarUint11(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestVarUintEncodedSizesAgree(t *testing.T) {
	for _, v := range varUintSamples {
		require.Equal(t, varUint10Size(v), varUint11Size(v), "value %d", v)
	}
}

func TestVarUint10ZeroEncoding(t *testing.T) {
	buf := writeVarUint10(nil, 0)
	require.Equal(t, []byte{0x80}, buf)
}

func TestVarUint11BoundaryEncodings(t *testing.T) {
	require.Equal(t, []byte{0xff}, writeVarUint11(nil, 127))
	require.Equal(t, []byte{0x02, 0x02}, writeVarUint11(nil, 128))
	require.Equal(t,
		[]byte{0x00, 0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x03},
		writeVarUint11(nil, math.MaxUint64))
}

func TestVarUint10RejectsOverlongTerminator(t *testing.T) {
	// 10 bytes, none terminated: a Decoding error, not a panic or
	// silent truncation.
	buf := make([]byte, 10)
	_, _, err := readVarUint10(buf)
	require.Error(t, err)
}

func TestVarUint11Incomplete(t *testing.T) {
	_, _, err := readVarUint11(nil)
	require.Error(t, err)
	require.True(t, IsIncomplete(err))

	// first byte announces one continuation byte, but it is not
	// present.
	_, _, err = readVarUint11([]byte{0b0000_0010}) // 1 trailing zero -> needs 2 bytes total
	require.Error(t, err)
	require.True(t, IsIncomplete(err))
}
