package handler

import (
	"bytes"
	"sync"
)

const pooledBufferSize = 1024

// bufferPool recycles response encoding buffers
var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, pooledBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer drops oversized buffers so one large listing does not pin memory
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*pooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
