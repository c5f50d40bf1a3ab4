// Package audio implements four AUDIO devices (ports 0x30, 0x40, 0x50,
// 0x60): each one triggers playback of a raw 8-bit PCM sample living in
// guest RAM, pitched and attenuated per its control registers, mixed
// through faiface/beep the same way the teacher's VM drove its own
// single fixed beep.mp3 through speaker.Play.
package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
)

// SampleRate is the mix rate the shared speaker is initialized at; uxn
// samples are resampled to this rate per channel based on their pitch byte.
const SampleRate = beep.SampleRate(44100)

var speakerOnce bool

// Device is one AUDIO channel's device handler, mounted at one of the four
// base addresses (0x30/0x40/0x50/0x60).
type Device struct {
	ctrl *beep.Ctrl
}

// New returns an unstarted AUDIO channel device. Init must be called once,
// process-wide, before any channel's first trigger.
func New() *Device { return &Device{} }

// Init starts the shared speaker backend at SampleRate with a 1/10s
// buffer, the same buffer sizing the teacher used for its single beep
// channel. Safe to call once per process; later calls are no-ops.
func Init() error {
	if speakerOnce {
		return nil
	}
	speakerOnce = true
	return speaker.Init(SampleRate, SampleRate.N(time.Second/10))
}

// DEI reads back the stored byte for every port; the playback position is
// not reported.
func (d *Device) DEI(m *uxn.Machine, addr uint8) uint8 {
	return m.Dev[addr]
}

// DEO acts on a write to the pitch byte (offset 0x0f), which arms and
// starts playback using the channel's length (0x0a-0x0b), sample address
// (0x0c-0x0d), volume (0x0e) and pitch registers as they stand.
func (d *Device) DEO(m *uxn.Machine, addr uint8) {
	base := addr &^ 0x0f
	if addr&0x0f != 0x0f {
		return
	}
	length := peek2(m, base+0x0a)
	sampleAddr := peek2(m, base+0x0c)
	volume := m.Dev[base+0x0e]
	pitch := m.Dev[base+0x0f]
	if length == 0 {
		return
	}
	samples := make([]byte, length)
	copy(samples, m.RAM.Pages[0][sampleAddr:sampleAddr+length])

	d.play(samples, pitch, volume)
}

func peek2(m *uxn.Machine, addr uint8) uint16 {
	return uint16(m.Dev[addr])<<8 | uint16(m.Dev[addr+1])
}

// play resamples an 8-bit unsigned PCM buffer per the pitch byte (a
// semitone offset from middle C, uxn convention) and streams it once at
// the given linear volume (0-255), mirroring speaker.Play(streamer) in the
// teacher's ManageAudio.
func (d *Device) play(samples []byte, pitch, volume uint8) {
	base := &pcmStreamer{data: samples, gain: float64(volume) / 255}
	ratio := semitoneRatio(pitch)
	resampled := beep.ResampleRatio(4, ratio, base)
	speaker.Play(resampled)
}

// semitoneRatio converts a uxn pitch byte (middle C at 0x3c, per the
// reference device) to a playback-speed multiplier.
func semitoneRatio(pitch uint8) float64 {
	const middleC = 0x3c
	semitones := float64(int(pitch) - middleC)
	ratio := 1.0
	for semitones > 0 {
		ratio *= 1.059463094359
		semitones--
	}
	for semitones < 0 {
		ratio /= 1.059463094359
		semitones++
	}
	return ratio
}

// pcmStreamer turns a flat buffer of unsigned 8-bit PCM samples into a
// beep.Streamer, attenuated by gain and played once through.
type pcmStreamer struct {
	data []byte
	pos  int
	gain float64
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	for n = 0; n < len(samples) && s.pos < len(s.data); n++ {
		v := (float64(s.data[s.pos]) - 128) / 128 * s.gain
		samples[n][0], samples[n][1] = v, v
		s.pos++
	}
	return n, true
}

func (s *pcmStreamer) Err() error { return nil }
