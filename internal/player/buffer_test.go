package player

import (
	"bytes"
	"testing"
	"time"
)

func TestBufferPushPop(t *testing.T) {
	buf := newOpusBuffer(8)

	if !buf.Push([]byte{1, 2, 3}) {
		t.Fatal("Push returned false")
	}
	if !buf.Push([]byte{4, 5}) {
		t.Fatal("Push returned false")
	}
	if got := buf.BufferedCount(); got != 2 {
		t.Errorf("BufferedCount = %d, want 2", got)
	}

	pkt, ok := buf.Pop()
	if !ok || !bytes.Equal(pkt, []byte{1, 2, 3}) {
		t.Errorf("Pop = %v, %t", pkt, ok)
	}
	pkt, ok = buf.Pop()
	if !ok || !bytes.Equal(pkt, []byte{4, 5}) {
		t.Errorf("Pop = %v, %t", pkt, ok)
	}
}

func TestBufferFullRejectsPush(t *testing.T) {
	buf := newOpusBuffer(4)
	for i := 0; i < 3; i++ {
		if !buf.Push([]byte{0}) {
			t.Fatal("Push returned false before ring filled")
		}
	}
	if buf.Push([]byte{0}) {
		t.Error("Push accepted packet on a full ring")
	}

	buf.Pop()
	if !buf.Push([]byte{0}) {
		t.Error("Push rejected packet after Pop made room")
	}
}

func TestBufferFlush(t *testing.T) {
	buf := newOpusBuffer(8)
	buf.Push([]byte{1})
	buf.Push([]byte{2})

	buf.Flush()
	if got := buf.BufferedCount(); got != 0 {
		t.Errorf("BufferedCount after Flush = %d, want 0", got)
	}
}

func TestBufferCloseUnblocksPop(t *testing.T) {
	buf := newOpusBuffer(8)

	done := make(chan bool)
	go func() {
		_, ok := buf.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop returned ok=true from a closed buffer")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}

	if buf.Push([]byte{1}) {
		t.Error("Push accepted packet after Close")
	}
}

func TestBufferPushCopiesData(t *testing.T) {
	buf := newOpusBuffer(8)
	src := []byte{1, 2, 3}
	buf.Push(src)
	src[0] = 9

	pkt, _ := buf.Pop()
	if pkt[0] != 1 {
		t.Error("Push must copy the packet, not alias the caller's slice")
	}
}
