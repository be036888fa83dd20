package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/asticode/go-astiav"
)

// PCMStreamer opens a live network stream, decodes its best audio stream,
// and resamples to interleaved s16le 48kHz stereo PCM on Reader().
type PCMStreamer struct {
	fc          *astiav.FormatContext
	audioStream *astiav.Stream
	decCtx      *astiav.CodecContext
	swr         *astiav.SoftwareResampleContext
	srcFrame    *astiav.Frame
	dstFrame    *astiav.Frame
	cancel      context.CancelFunc
	pr          *io.PipeReader
	pw          *io.PipeWriter
	closeOnce   sync.Once
	errMu       sync.Mutex
	runErr      error

	targetRate   int
	targetLayout astiav.ChannelLayout
	targetFormat astiav.SampleFormat
}

// OpenPCM opens inputURL and starts the background decode loop. The input is
// a live radio stream: no seeking, no duration, runs until the context is
// canceled or the upstream drops.
func OpenPCM(ctx context.Context, inputURL string) (*PCMStreamer, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("alloc format context")
	}

	// HTTP(S) reconnect options for a flaky upstream
	dict := astiav.NewDictionary()
	defer dict.Free()
	_ = dict.Set("reconnect", "1", 0)
	_ = dict.Set("reconnect_streamed", "1", 0)
	_ = dict.Set("reconnect_delay_max", "5", 0)

	if err := fc.OpenInput(inputURL, nil, dict); err != nil {
		fc.Free()
		return nil, fmt.Errorf("open input: %w", err)
	}

	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("find stream info: %w", err)
	}

	st, codec, err := fc.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil || st == nil || codec == nil {
		fc.CloseInput()
		fc.Free()
		if err != nil {
			return nil, fmt.Errorf("find best audio stream: %w", err)
		}
		return nil, errors.New("no audio stream found")
	}

	decCtx := astiav.AllocCodecContext(codec)
	if decCtx == nil {
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("alloc codec context")
	}
	if err := decCtx.FromCodecParameters(st.CodecParameters()); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("codec from params: %w", err)
	}
	decCtx.SetTimeBase(st.TimeBase())

	if err := decCtx.Open(codec, nil); err != nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("open decoder: %w", err)
	}

	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("alloc swr")
	}

	srcFrame := astiav.AllocFrame()
	dstFrame := astiav.AllocFrame()
	if srcFrame == nil || dstFrame == nil {
		if srcFrame != nil {
			srcFrame.Free()
		}
		if dstFrame != nil {
			dstFrame.Free()
		}
		swr.Free()
		decCtx.Free()
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("alloc frames")
	}

	pr, pw := io.Pipe()
	ctx2, cancel := context.WithCancel(ctx)
	ps := &PCMStreamer{
		fc:           fc,
		audioStream:  st,
		decCtx:       decCtx,
		swr:          swr,
		srcFrame:     srcFrame,
		dstFrame:     dstFrame,
		cancel:       cancel,
		pr:           pr,
		pw:           pw,
		targetRate:   SampleRate,
		targetLayout: astiav.ChannelLayoutStereo,
		targetFormat: astiav.SampleFormatS16,
	}

	go ps.run(ctx2)

	return ps, nil
}

func (s *PCMStreamer) Reader() io.Reader { return s.pr }

// Err returns the first error hit by the decode loop, if any.
func (s *PCMStreamer) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.runErr
}

func (s *PCMStreamer) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.pr.Close()
		_ = s.pw.Close()
		if s.srcFrame != nil {
			s.srcFrame.Free()
		}
		if s.dstFrame != nil {
			s.dstFrame.Free()
		}
		if s.swr != nil {
			s.swr.Free()
		}
		if s.decCtx != nil {
			s.decCtx.Free()
		}
		if s.fc != nil {
			s.fc.CloseInput()
			s.fc.Free()
		}
	})
}

func (s *PCMStreamer) run(ctx context.Context) {
	defer func() { _ = s.pw.Close() }()

	packet := astiav.AllocPacket()
	defer packet.Free()

	for {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return
		default:
		}

		packet.Unref()
		if err := s.fc.ReadFrame(packet); err != nil {
			if astErr, ok := err.(astiav.Error); ok && astErr.Is(io.EOF) {
				s.drainDecoder()
				return
			}
			if astErr, ok := err.(astiav.Error); ok && astErr.Is(astiav.ErrorAgain) {
				continue
			}
			s.setErr(fmt.Errorf("read frame: %w", err))
			return
		}

		if packet.StreamIndex() != s.audioStream.Index() {
			continue
		}

		if err := s.decCtx.SendPacket(packet); err != nil {
			if astErr, ok := err.(astiav.Error); !ok || !astErr.Is(astiav.ErrorAgain) {
				s.setErr(fmt.Errorf("send packet: %w", err))
				return
			}
		}

		for {
			s.srcFrame.Unref()
			if err := s.decCtx.ReceiveFrame(s.srcFrame); err != nil {
				if astErr, ok := err.(astiav.Error); ok && (astErr.Is(astiav.ErrorAgain) || astErr.Is(io.EOF)) {
					break
				}
				s.setErr(fmt.Errorf("receive frame: %w", err))
				return
			}
			if err := s.convertAndWritePCM(s.srcFrame); err != nil {
				s.setErr(err)
				return
			}
		}
	}
}

func (s *PCMStreamer) drainDecoder() {
	_ = s.decCtx.SendPacket(nil)
	for {
		s.srcFrame.Unref()
		if err := s.decCtx.ReceiveFrame(s.srcFrame); err != nil {
			return
		}
		if err := s.convertAndWritePCM(s.srcFrame); err != nil {
			s.setErr(err)
			return
		}
	}
}

func (s *PCMStreamer) convertAndWritePCM(src *astiav.Frame) error {
	s.dstFrame.Unref()
	s.dstFrame.SetNbSamples(src.NbSamples())
	s.dstFrame.SetChannelLayout(s.targetLayout)
	s.dstFrame.SetSampleRate(s.targetRate)
	s.dstFrame.SetSampleFormat(s.targetFormat)
	if err := s.dstFrame.AllocBuffer(0); err != nil {
		return fmt.Errorf("dst alloc buffer: %w", err)
	}

	if err := s.swr.ConvertFrame(src, s.dstFrame); err != nil {
		return fmt.Errorf("swr convert: %w", err)
	}

	b, err := s.dstFrame.Data().Bytes(0)
	if err != nil {
		return fmt.Errorf("dst bytes: %w", err)
	}
	_, err = s.pw.Write(b)
	return err
}

func (s *PCMStreamer) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.runErr == nil {
		s.runErr = err
	}
}
