package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/atacradio/atacbot/internal/radio"
	"github.com/atacradio/atacbot/internal/stream"
)

// Player relays the resolved radio stream into a single voice connection.
// One instance per process: the bot serves one guild and one station.
type Player struct {
	radio *radio.Client
	state *radio.State

	mu            sync.Mutex
	conn          *discordgo.VoiceConnection
	connChannelID string
	status        Status
	curPlay       *playSession
}

type playSession struct {
	ctx    context.Context
	cancel context.CancelFunc

	pcm *stream.PCMStreamer
	enc *stream.Encoder
	buf *opusBuffer

	paused bool
	doneCh chan struct{}
}

func New(radioClient *radio.Client, state *radio.State) *Player {
	return &Player{
		radio:  radioClient,
		state:  state,
		status: StatusDisconnected,
	}
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connChannelID
}

func (p *Player) Connect(s *discordgo.Session, guildID, channelID string) error {
	p.mu.Lock()
	if p.conn != nil && p.connChannelID == channelID {
		p.mu.Unlock()
		return nil
	}
	old := p.conn
	p.conn = nil
	p.connChannelID = ""
	p.mu.Unlock()

	if old != nil {
		_ = old.Speaking(false)
		_ = old.Disconnect(context.Background())
	}

	vc, err := s.ChannelVoiceJoin(context.Background(), guildID, channelID, false, true)
	if err != nil {
		return err
	}

	// discordgo leaves these nil until the first sender; sends would panic
	if vc.OpusSend == nil {
		vc.OpusSend = make(chan []byte, 2)
	}
	if vc.OpusRecv == nil {
		vc.OpusRecv = make(chan *discordgo.Packet, 2)
	}

	p.mu.Lock()
	p.conn = vc
	p.connChannelID = channelID
	p.mu.Unlock()

	return nil
}

// StartStream re-resolves the manifest (the stream URL is time-limited),
// opens the transcode pipeline, and starts playback. Resolution or pipeline
// failures propagate to the caller, who reports them to the user.
func (p *Player) StartStream(ctx context.Context) error {
	p.mu.Lock()
	vc := p.conn
	if vc == nil {
		p.mu.Unlock()
		return errors.New("not connected")
	}
	p.stopPlayLocked()
	p.mu.Unlock()

	manifest, err := p.radio.Resolve(ctx)
	if err != nil {
		return err
	}
	p.state.SetManifest(manifest)

	playCtx, playCancel := context.WithCancel(ctx)
	pcm, err := stream.OpenPCM(playCtx, manifest.StreamURL)
	if err != nil {
		playCancel()
		return err
	}
	enc, err := stream.NewEncoder()
	if err != nil {
		pcm.Close()
		playCancel()
		return err
	}

	sess := &playSession{
		ctx:    playCtx,
		cancel: playCancel,
		pcm:    pcm,
		enc:    enc,
		buf:    newOpusBuffer(100),
		doneCh: make(chan struct{}),
	}

	p.mu.Lock()
	if p.conn != vc {
		p.mu.Unlock()
		sess.cancel()
		enc.Close()
		pcm.Close()
		return errors.New("play aborted due to state change")
	}
	p.curPlay = sess
	p.status, _ = Next(p.status, EventPlay)
	p.mu.Unlock()

	go p.sendLoop(vc, sess)

	slog.Info("radio stream started", "channelID", p.ChannelID())
	return nil
}

// Pause gates the send loop without tearing down the transport or the
// decode pipeline. Illegal while not playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := Next(p.status, EventPause)
	if !ok {
		return errors.New("not playing")
	}
	p.status = next
	if p.curPlay != nil {
		p.curPlay.paused = true
	}
	return nil
}

// Resume lifts the pause gate in place. The buffered packets are dropped so
// playback rejoins the live edge instead of replaying the pause backlog.
// Illegal unless paused; reconnecting from Stopped/Disconnected goes through
// Connect + StartStream instead.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := Next(p.status, EventResume)
	if !ok {
		return errors.New("not paused")
	}
	p.status = next
	if p.curPlay != nil {
		p.curPlay.buf.Flush()
		p.curPlay.paused = false
	}
	return nil
}

// Stop tears the transport down entirely. Playback afterwards requires a
// full reconnect and manifest re-resolution.
func (p *Player) Stop() {
	p.disconnect(StatusStopped)
}

// Disconnect leaves the voice channel (the /leave command).
func (p *Player) Disconnect() {
	p.disconnect(StatusDisconnected)
}

func (p *Player) disconnect(final Status) {
	p.mu.Lock()
	p.stopPlayLocked()
	p.status = final
	vc := p.conn
	p.conn = nil
	p.connChannelID = ""
	p.mu.Unlock()

	if vc != nil {
		_ = p.safeDisconnect(vc)
	}
}

// safeDisconnect safely disconnects a voice connection with proper cleanup
func (p *Player) safeDisconnect(vc *discordgo.VoiceConnection) error {
	if vc == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("voice disconnect panic recovered", "panic", r)
		}
	}()

	// Ensure channels exist before disconnecting
	// This prevents panic in Kill() when it tries to close nil channels
	if vc.OpusSend == nil {
		vc.OpusSend = make(chan []byte, 2)
	}
	if vc.OpusRecv == nil {
		vc.OpusRecv = make(chan *discordgo.Packet, 2)
	}

	_ = vc.Speaking(false)

	time.Sleep(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return vc.Disconnect(ctx)
}

// stopPlayLocked stops the current play session. Caller must hold p.mu.
// It temporarily releases the lock while waiting for the send loop to end.
func (p *Player) stopPlayLocked() {
	if p.curPlay == nil {
		return
	}
	sess := p.curPlay
	p.curPlay = nil

	sess.cancel()
	sess.buf.Close()

	done := sess.doneCh
	p.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	p.mu.Lock()
}

func isVoiceReady(vc *discordgo.VoiceConnection) bool {
	if vc == nil {
		return false
	}
	vc.RLock()
	defer vc.RUnlock()
	return vc.Ready && vc.OpusSend != nil
}

func (p *Player) sendLoop(vc *discordgo.VoiceConnection, sess *playSession) {
	defer func() {
		sess.buf.Close()
		sess.enc.Close()
		sess.pcm.Close()
		sess.cancel()
		close(sess.doneCh)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && !isVoiceReady(vc) {
		select {
		case <-sess.ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	if !isVoiceReady(vc) {
		return
	}

	_ = vc.Speaking(true)
	defer vc.Speaking(false)

	go p.producePackets(sess)
	p.consumePackets(vc, sess)
}

func (p *Player) producePackets(sess *playSession) {
	defer sess.buf.Close()

	framePCM := make([]byte, stream.FrameBytes)
	r := sess.pcm.Reader()

	for {
		select {
		case <-sess.ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(r, framePCM); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.ErrClosedPipe) {
				slog.Warn("pcm read failed", "err", err)
			}
			return
		}

		var outPkt []byte
		if err := sess.enc.EncodeFrame(framePCM, func(pkt []byte) error {
			outPkt = append(outPkt[:0], pkt...)
			return nil
		}); err != nil {
			slog.Warn("opus encode failed", "err", err)
			return
		}
		if len(outPkt) == 0 {
			continue
		}

		// backpressure: the ring fills while the consumer is paused
		for !sess.buf.Push(outPkt) {
			select {
			case <-sess.ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

func (p *Player) consumePackets(vc *discordgo.VoiceConnection, sess *playSession) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	speaking := true
	for {
		select {
		case <-sess.ctx.Done():
			return
		default:
		}

		if p.sessionPaused(sess) {
			if speaking {
				speaking = false
				_ = vc.Speaking(false)
			}
			select {
			case <-sess.ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if !speaking {
			speaking = true
			_ = vc.Speaking(true)
		}

		pkt, ok := sess.buf.Pop()
		if !ok {
			p.handleStreamEnd(sess)
			return
		}

		<-ticker.C
		select {
		case vc.OpusSend <- pkt:
		case <-sess.ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
			slog.Debug("dropped opus packet")
		}
	}
}

func (p *Player) sessionPaused(sess *playSession) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sess.paused
}

// handleStreamEnd runs when a live stream dries up on its own (upstream
// drop). The connection is kept; the next resume does a fresh start.
func (p *Player) handleStreamEnd(sess *playSession) {
	p.mu.Lock()
	if p.curPlay != sess {
		p.mu.Unlock()
		return
	}
	p.curPlay = nil
	p.status = StatusStopped
	p.mu.Unlock()

	if err := sess.pcm.Err(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("stream ended with error", "err", err)
	} else {
		slog.Warn("radio stream ended")
	}
}
