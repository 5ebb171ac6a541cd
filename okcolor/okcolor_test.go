package okcolor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 0.0, Luminance(color.Black), 1e-9)
	assert.InDelta(t, 1.0, Luminance(color.White), 1e-9)
	assert.InDelta(t, 0.2126, Luminance(color.NRGBA{R: 255, A: 255}), 1e-6)
	assert.InDelta(t, 0.7152, Luminance(color.NRGBA{G: 255, A: 255}), 1e-6)

	// straight alpha: a half transparent white is still white
	assert.InDelta(t, 1.0, Luminance(color.NRGBA{R: 255, G: 255, B: 255, A: 128}), 1e-9)
}

func TestLabRoundTrip(t *testing.T) {
	for _, c := range []color.NRGBA{
		{R: 255, A: 255},
		{G: 128, B: 64, A: 255},
		{R: 12, G: 200, B: 250, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	} {
		lab := LabModel.Convert(c).(Lab)
		got := color.NRGBAModel.Convert(lab).(color.NRGBA)
		assert.Equal(t, c, got)
	}
}

func TestHueDegrees(t *testing.T) {
	red := LChModel.Convert(color.NRGBA{R: 255, A: 255}).(LCh)
	blue := LChModel.Convert(color.NRGBA{B: 255, A: 255}).(LCh)
	green := LChModel.Convert(color.NRGBA{G: 255, A: 255}).(LCh)

	assert.InDelta(t, 29.2, red.HueDegrees(), 0.5)
	assert.InDelta(t, 142.5, green.HueDegrees(), 0.5)
	assert.InDelta(t, 264.1, blue.HueDegrees(), 0.5)

	gray := LChModel.Convert(color.NRGBA{R: 128, G: 128, B: 128, A: 255}).(LCh)
	assert.InDelta(t, 0, gray.C, 1e-4)
}
