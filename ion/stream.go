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
	"io"

	"github.com/google/uuid"
)

// maxReadGrowthFactor bounds how large a single StreamReader read
// request can grow relative to its configured initial size, so a
// pathological stream cannot force unbounded per-read allocations.
const maxReadGrowthFactor = 10

// StreamReader re-drives RawReader over a blocking io.Reader,
// growing its buffer whenever the lazy parser reports Incomplete.
// It never blocks on anything but src.Read.
//
// SessionID is a diagnostic correlation identifier, logged by
// callers the way request handlers elsewhere tag a query with a
// generated ID for tracing a single stream's reads across log
// lines.
type StreamReader struct {
	src       io.Reader
	buf       []byte
	readSize  int
	maxRead   int
	r         *RawReader
	sawEOF    bool
	SessionID string
}

// NewStreamReader creates a StreamReader that issues reads of
// initialSize bytes, doubling the read size after each read that
// does not hit EOF, up to 10x initialSize. A non-positive initialSize defaults to 4096.
func NewStreamReader(src io.Reader, initialSize int) *StreamReader {
	if initialSize <= 0 {
		initialSize = 4096
	}
	return &StreamReader{
		src:       src,
		readSize:  initialSize,
		maxRead:   initialSize * maxReadGrowthFactor,
		r:         NewRawReader(nil),
		SessionID: uuid.New().String(),
	}
}

// Next returns the next item, blocking on src.Read as needed.
func (s *StreamReader) Next() (Item, error) {
	if len(s.buf) == 0 && !s.sawEOF {
		if err := s.fill(); err != nil {
			return Item{}, err
		}
	}
	for {
		item, err := s.r.Next()
		if err == nil {
			if item.Kind == ItemEndOfStream && !s.sawEOF {
				if err := s.fill(); err != nil {
					return Item{}, err
				}
				continue
			}
			return item, nil
		}
		if !IsIncomplete(err) {
			return Item{}, err
		}
		if s.sawEOF {
			return Item{}, err
		}
		if err := s.fill(); err != nil {
			return Item{}, err
		}
	}
}

// fill reads one more chunk from src, appending it to the buffer
// backing the raw reader. It marks sawEOF the first time src.Read
// reports io.EOF, so a second consecutive Incomplete after that is
// surfaced rather than retried forever.
func (s *StreamReader) fill() error {
	chunk := make([]byte, s.readSize)
	n, err := s.src.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
		s.r.buf = newIonBuffer(s.buf, 0)
	}
	if err != nil {
		if err == io.EOF {
			s.sawEOF = true
			return nil
		}
		return ioErr(err)
	}
	if s.readSize < s.maxRead {
		s.readSize *= 2
		if s.readSize > s.maxRead {
			s.readSize = s.maxRead
		}
	}
	return nil
}

// Offset returns the underlying raw reader's current stream
// position.
func (s *StreamReader) Offset() int64 { return s.r.Offset() }
