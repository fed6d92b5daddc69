// Command lockinscope is a thin oscilloscope viewer: it runs the engine
// in-process and renders a trigger-stabilized waveform plus a log-frequency
// spectrum panel from the shared double buffer every frame. No audio
// subsystem is involved.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/spf13/pflag"

	"github.com/miksto/lockin-amplifier-engine/dsp/chain"
	"github.com/miksto/lockin-amplifier-engine/dsp/dbuf"
	"github.com/miksto/lockin-amplifier-engine/dsp/spectrum"
	"github.com/miksto/lockin-amplifier-engine/dsp/trigger"
	"github.com/miksto/lockin-amplifier-engine/engine"
	"github.com/miksto/lockin-amplifier-engine/engine/config"
)

const (
	windowW = 1000
	windowH = 750
	rowH    = windowH / 3
)

var (
	bgColor    = color.RGBA{10, 12, 16, 255}
	gridColor  = color.RGBA{40, 44, 52, 255}
	traceColor = color.RGBA{80, 220, 140, 255}
	outColor   = color.RGBA{220, 160, 60, 255}
)

type scope struct {
	facade *engine.Facade
	buffer *dbuf.Buffer

	snapshotPoints int
	sampleRate     float64
	timeScale      float64
	latest         engine.FrameReady

	holdoff  trigger.Holdoff
	specBins []float64
}

func newScope(facade *engine.Facade, buffer *dbuf.Buffer, params config.Params) *scope {
	return &scope{
		facade:         facade,
		buffer:         buffer,
		snapshotPoints: params.SnapshotPoints,
		sampleRate:     params.SampleRate,
		timeScale:      params.TimeScale,
	}
}

func (s *scope) Update() error {
	for {
		select {
		case fr := <-s.facade.Events():
			s.latest = fr
		default:
			return nil
		}
	}
}

func (s *scope) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	for i := 0; i < 10; i++ {
		x := float64(i) * float64(windowW) / 10
		ebitenutil.DrawLine(screen, x, 0, x, windowH, gridColor)
	}

	read := s.buffer.AcquireRead()
	drawChannel(screen, read.Channel(chain.ChanAfterBpf), rowH/2, rowH/2-4, traceColor)

	offset := s.triggerOffset(read)
	drawChannelFrom(screen, read.Channel(chain.ChanSignedOutput), offset, rowH+rowH/2, rowH/2-4, outColor)

	s.drawSpectrum(screen, read.Channel(chain.ChanAfterBpf), 2*rowH, rowH)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"i=%.4f q=%.4f signed=%.4f phase=%.1fdeg effRate=%.0fHz",
		s.latest.Outputs.I, s.latest.Outputs.Q, s.latest.Outputs.SignedOutput,
		s.latest.Outputs.PhaseDeg, s.latest.EffectiveSampleRate), 8, 8)
}

func (s *scope) Layout(outsideW, outsideH int) (int, int) {
	return windowW, windowH
}

// triggerOffset runs the trigger holdoff state machine against the
// modulating channel to find a stable rising-edge start index for the
// signedOutput trace, the way a real scope's trigger stabilizes a waveform.
func (s *scope) triggerOffset(read dbuf.ReadView) int {
	channel := toFloat64(read.Channel(chain.ChanModulating))
	time := toFloat64(read.Channel(chain.ChanTime))
	if len(channel) < 2 || len(time) < 2 {
		return 0
	}

	window := trigger.DisplayWindow(s.timeScale)
	res, ok := s.holdoff.Evaluate(channel, time, 0, time[0], time[len(time)-1], window)
	if !ok {
		return 0
	}
	return indexAtOrAfter(time, res.Time)
}

// drawSpectrum computes the windowed magnitude spectrum of samples and
// renders it as log-frequency bars with fast-attack, slow-decay smoothing.
func (s *scope) drawSpectrum(screen *ebiten.Image, samples []float32, yOffset, height int) {
	if height < 8 {
		return
	}
	bins := spectrum.Compute(toFloat64(samples), s.sampleRate)
	if len(bins) < 2 {
		return
	}

	numBars := windowW / 4
	if len(s.specBins) != numBars {
		s.specBins = make([]float64, numBars)
	}

	minBin, maxBin := 1, len(bins)-1
	logMin := math.Log(float64(minBin))
	logMax := math.Log(float64(maxBin))

	for i := 0; i < numBars; i++ {
		frac0 := float64(i) / float64(numBars)
		frac1 := float64(i+1) / float64(numBars)
		binStart := int(math.Exp(logMin + frac0*(logMax-logMin)))
		binEnd := int(math.Exp(logMin + frac1*(logMax-logMin)))
		if binEnd <= binStart {
			binEnd = binStart + 1
		}
		if binEnd > len(bins) {
			binEnd = len(bins)
		}

		sum, count := 0.0, 0
		for b := binStart; b < binEnd; b++ {
			sum += bins[b].MagnitudeDB
			count++
		}
		norm := 0.0
		if count > 0 {
			norm = (sum/float64(count) + 100) / 100
		}
		norm = math.Max(0, math.Min(1, norm))

		prev := s.specBins[i]
		if norm > prev {
			s.specBins[i] = prev*0.3 + norm*0.7
		} else {
			s.specBins[i] = prev*0.85 + norm*0.15
		}
	}

	barW := float64(windowW) / float64(numBars)
	for i := 0; i < numBars; i++ {
		v := s.specBins[i]
		barH := v * float64(height-4)
		if barH < 1 {
			barH = 1
		}
		x := float64(i) * barW
		y := float64(yOffset) + float64(height-2) - barH
		ebitenutil.DrawRect(screen, x+1, y, barW-1, barH, spectrumColor(v))
	}
}

func spectrumColor(v float64) color.Color {
	switch {
	case v < 0.33:
		t := v / 0.33
		return color.RGBA{uint8(30 + 20*t), uint8(80 + 120*t), uint8(200 + 55*t), 220}
	case v < 0.66:
		t := (v - 0.33) / 0.33
		return color.RGBA{uint8(50 + 140*t), uint8(200 + 30*t), uint8(255 - 100*t), 220}
	default:
		t := (v - 0.66) / 0.34
		return color.RGBA{uint8(190 + 65*t), uint8(230 - 100*t), uint8(155 - 100*t), 220}
	}
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func indexAtOrAfter(time []float64, target float64) int {
	for i, t := range time {
		if t >= target {
			return i
		}
	}
	return 0
}

func drawChannel(screen *ebiten.Image, samples []float32, midY, amplitudePixels int, col color.Color) {
	drawChannelFrom(screen, samples, 0, midY, amplitudePixels, col)
}

func drawChannelFrom(screen *ebiten.Image, samples []float32, offset, midY, amplitudePixels int, col color.Color) {
	n := len(samples)
	if n < 2 {
		return
	}
	if offset < 0 || offset >= n-1 {
		offset = 0
	}
	visible := n - offset

	prevX, prevY := 0.0, float64(midY)-float64(samples[offset])*float64(amplitudePixels)
	for px := 1; px < windowW; px++ {
		idx := offset + px*visible/windowW
		if idx >= n {
			idx = n - 1
		}
		y := float64(midY) - float64(samples[idx])*float64(amplitudePixels)
		x := float64(px)
		ebitenutil.DrawLine(screen, prevX, prevY, x, y, col)
		prevX, prevY = x, y
	}
}

func main() {
	presetPath := pflag.StringP("preset", "p", "", "YAML preset file to load instead of defaults")
	pflag.Parse()

	params := config.Default()
	params.SnapshotPoints = windowW // one sample per pixel column is plenty for display
	if *presetPath != "" {
		loaded, err := config.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("lockinscope: %v", err)
		}
		params = loaded
		params.SnapshotPoints = windowW
	}
	params.Clamp()

	buffer := dbuf.New(params.SnapshotPoints)
	facade := engine.New(log.Default())
	if err := facade.Init(buffer, params.SnapshotPoints); err != nil {
		log.Fatalf("lockinscope: init: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := facade.Start(ctx, params); err != nil {
		log.Fatalf("lockinscope: start: %v", err)
	}
	defer facade.Stop()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("lockinscope")
	if err := ebiten.RunGame(newScope(facade, buffer, params)); err != nil {
		log.Fatal(err)
	}
}
