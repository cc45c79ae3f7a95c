package polyjson

import (
	"context"
	"io"
)

// contextReader aborts in-flight reads as soon as the context is done. The
// pipeline itself never blocks; suspension only happens at these I/O
// boundaries.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// contextWriter mirrors contextReader for encode targets.
type contextWriter struct {
	ctx context.Context
	w   io.Writer
}

func (c *contextWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}
