package player

import (
	"sync"
)

// opusBuffer is a fixed-size ring of encoded opus packets between the
// producer (decode+encode) and the consumer (paced voice sends).
type opusBuffer struct {
	mu       sync.Mutex
	packets  [][]byte
	maxSize  int
	readPos  int
	writePos int
	closed   bool
	notEmpty *sync.Cond
}

func newOpusBuffer(maxPackets int) *opusBuffer {
	ob := &opusBuffer{
		packets: make([][]byte, maxPackets),
		maxSize: maxPackets,
	}
	ob.notEmpty = sync.NewCond(&ob.mu)
	return ob
}

// Push copies data into the ring. Returns false when the ring is full or
// closed; the producer backs off and retries.
func (ob *opusBuffer) Push(data []byte) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if ob.closed {
		return false
	}

	used := (ob.writePos - ob.readPos + ob.maxSize) % ob.maxSize
	if used >= ob.maxSize-1 {
		return false
	}

	ob.packets[ob.writePos] = append([]byte(nil), data...)
	ob.writePos = (ob.writePos + 1) % ob.maxSize
	ob.notEmpty.Signal()
	return true
}

// Pop blocks until a packet is available or the buffer is closed.
func (ob *opusBuffer) Pop() ([]byte, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	for {
		if ob.closed {
			return nil, false
		}
		used := (ob.writePos - ob.readPos + ob.maxSize) % ob.maxSize
		if used > 0 {
			pkt := ob.packets[ob.readPos]
			ob.readPos = (ob.readPos + 1) % ob.maxSize
			return pkt, true
		}
		ob.notEmpty.Wait()
	}
}

func (ob *opusBuffer) BufferedCount() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return (ob.writePos - ob.readPos + ob.maxSize) % ob.maxSize
}

// Flush drops everything buffered so playback rejoins the live edge, used
// when resuming after a pause.
func (ob *opusBuffer) Flush() {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.readPos = ob.writePos
}

func (ob *opusBuffer) Close() {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.closed = true
	ob.notEmpty.Broadcast()
}
