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

// Package compress provides transform.Transform implementations that
// compress or decompress bytes flowing between two bio.Buffers, backed
// by klauspost/compress's S2 (a faster Snappy-compatible codec) and
// zstd codecs.
package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/SnellerInc/bio"
)

// bufWriter adapts a *bio.Buffer to io.Writer for the duration of a
// single compressor binding.
type bufWriter struct{ b *bio.Buffer }

func (w bufWriter) Write(p []byte) (int, error) {
	w.b.WriteBytes(p)
	return len(p), nil
}

// bufReader adapts a *bio.Buffer to io.Reader, draining it as it goes.
type bufReader struct{ b *bio.Buffer }

func (r bufReader) Read(p []byte) (int, error) {
	if r.b.Exhausted() {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > r.b.Len() {
		n = r.b.Len()
	}
	if err := r.b.ReadBytes(p[:n]); err != nil {
		return 0, err
	}
	return int(n), nil
}

// S2Compressor transforms raw bytes into an S2-framed compressed
// stream. A single instance must be used with the same sink across
// the lifetime of one compressed stream; Finish flushes the frame
// trailer and marks the transform done.
type S2Compressor struct {
	w        *s2.Writer
	bound    *bio.Buffer
	finished bool
}

// NewS2Compressor returns an unbound S2 compressing transform.
func NewS2Compressor() *S2Compressor { return &S2Compressor{} }

func (c *S2Compressor) bind(sink *bio.Buffer) {
	if c.bound == sink {
		return
	}
	if c.w == nil {
		c.w = s2.NewWriter(bufWriter{sink})
	} else {
		c.w.Reset(bufWriter{sink})
	}
	c.bound = sink
}

// Transform implements transform.Transform.
func (c *S2Compressor) Transform(source, sink *bio.Buffer) error {
	if source == sink {
		return bio.NewInvalidArgumentError("S2Compressor.Transform: source and sink are the same buffer")
	}
	c.bind(sink)
	if source.Exhausted() {
		return nil
	}
	_, err := io.Copy(c.w, bufReader{source})
	return err
}

// Finish implements transform.Transform.
func (c *S2Compressor) Finish(sink *bio.Buffer) error {
	c.bind(sink)
	if c.finished {
		return nil
	}
	c.finished = true
	return c.w.Close()
}

// IsFinished implements transform.Transform.
func (c *S2Compressor) IsFinished() bool { return c.finished }

// S2Decompressor is the inverse of S2Compressor: it reads an
// S2-framed stream from source and writes the decompressed bytes to
// sink.
type S2Decompressor struct {
	r        *s2.Reader
	bound    *bio.Buffer
	finished bool
}

// NewS2Decompressor returns an unbound S2 decompressing transform.
func NewS2Decompressor() *S2Decompressor { return &S2Decompressor{} }

func (d *S2Decompressor) bind(source *bio.Buffer) {
	if d.bound == source {
		return
	}
	if d.r == nil {
		d.r = s2.NewReader(bufReader{source})
	} else {
		d.r.Reset(bufReader{source})
	}
	d.bound = source
}

// Transform implements transform.Transform.
func (d *S2Decompressor) Transform(source, sink *bio.Buffer) error {
	if source == sink {
		return bio.NewInvalidArgumentError("S2Decompressor.Transform: source and sink are the same buffer")
	}
	d.bind(source)
	_, err := io.Copy(bufWriter{sink}, d.r)
	if err == io.EOF {
		err = nil
	}
	return err
}

// Finish implements transform.Transform. S2's reader has no trailer
// to flush; finishing just latches the done flag.
func (d *S2Decompressor) Finish(sink *bio.Buffer) error {
	d.finished = true
	return nil
}

// IsFinished implements transform.Transform.
func (d *S2Decompressor) IsFinished() bool { return d.finished }

// ZstdCompressor is the zstd analog of S2Compressor.
type ZstdCompressor struct {
	w        *zstd.Encoder
	bound    *bio.Buffer
	finished bool
}

// NewZstdCompressor returns an unbound zstd compressing transform.
func NewZstdCompressor() *ZstdCompressor { return &ZstdCompressor{} }

func (c *ZstdCompressor) bind(sink *bio.Buffer) error {
	if c.bound == sink {
		return nil
	}
	if c.w == nil {
		enc, err := zstd.NewWriter(bufWriter{sink})
		if err != nil {
			return err
		}
		c.w = enc
	} else {
		c.w.Reset(bufWriter{sink})
	}
	c.bound = sink
	return nil
}

// Transform implements transform.Transform.
func (c *ZstdCompressor) Transform(source, sink *bio.Buffer) error {
	if source == sink {
		return bio.NewInvalidArgumentError("ZstdCompressor.Transform: source and sink are the same buffer")
	}
	if err := c.bind(sink); err != nil {
		return err
	}
	if source.Exhausted() {
		return nil
	}
	_, err := io.Copy(c.w, bufReader{source})
	return err
}

// Finish implements transform.Transform.
func (c *ZstdCompressor) Finish(sink *bio.Buffer) error {
	if err := c.bind(sink); err != nil {
		return err
	}
	if c.finished {
		return nil
	}
	c.finished = true
	return c.w.Close()
}

// IsFinished implements transform.Transform.
func (c *ZstdCompressor) IsFinished() bool { return c.finished }

// ZstdDecompressor is the inverse of ZstdCompressor.
type ZstdDecompressor struct {
	r        *zstd.Decoder
	bound    *bio.Buffer
	finished bool
}

// NewZstdDecompressor returns an unbound zstd decompressing transform.
func NewZstdDecompressor() *ZstdDecompressor { return &ZstdDecompressor{} }

func (d *ZstdDecompressor) bind(source *bio.Buffer) error {
	if d.bound == source {
		return nil
	}
	if d.r == nil {
		dec, err := zstd.NewReader(bufReader{source})
		if err != nil {
			return err
		}
		d.r = dec
	} else if err := d.r.Reset(bufReader{source}); err != nil {
		return err
	}
	d.bound = source
	return nil
}

// Transform implements transform.Transform.
func (d *ZstdDecompressor) Transform(source, sink *bio.Buffer) error {
	if source == sink {
		return bio.NewInvalidArgumentError("ZstdDecompressor.Transform: source and sink are the same buffer")
	}
	if err := d.bind(source); err != nil {
		return err
	}
	_, err := io.Copy(bufWriter{sink}, d.r)
	if err == io.EOF {
		err = nil
	}
	return err
}

// Finish implements transform.Transform. The zstd decoder holds no
// unflushed output of its own; finishing releases its background
// goroutines and latches the done flag.
func (d *ZstdDecompressor) Finish(sink *bio.Buffer) error {
	if d.finished {
		return nil
	}
	d.finished = true
	if d.r != nil {
		d.r.Close()
	}
	return nil
}

// IsFinished implements transform.Transform.
func (d *ZstdDecompressor) IsFinished() bool { return d.finished }
