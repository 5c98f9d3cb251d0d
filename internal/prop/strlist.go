package prop

import (
	"bytes"
	"sync"
)

// strList is a list of substrings whose backing storage came from either the
// locale splitter or this package. The release function is chosen when the
// list is built and runs exactly once, however decoding ends.
type strList struct {
	strs    [][]byte
	release func()
}

// Release frees the storage. Later calls do nothing.
func (l *strList) Release() {
	if l == nil || l.release == nil {
		return
	}
	release := l.release
	l.release = nil
	l.strs = nil
	release()
}

var localLists = sync.Pool{
	New: func() any {
		s := make([][]byte, 0, 8)
		return &s
	},
}

// splitNUL splits NUL-terminated substrings packed back to back. The last
// substring may omit its terminator. The returned slices alias raw.
func splitNUL(raw []byte) *strList {
	p := localLists.Get().(*[][]byte)
	strs := (*p)[:0]
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, 0)
		if i < 0 {
			strs = append(strs, raw)
			break
		}
		strs = append(strs, raw[:i])
		raw = raw[i+1:]
	}

	return &strList{
		strs: strs,
		release: func() {
			clear(strs)
			*p = strs[:0]
			localLists.Put(p)
		},
	}
}

// fromSplitter wraps storage handed out by a Splitter; it goes back through
// the splitter's own release function.
func fromSplitter(strs [][]byte, release func()) *strList {
	if release == nil {
		release = func() {}
	}
	return &strList{strs: strs, release: release}
}
