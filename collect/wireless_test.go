package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWirelessQualityRCPI(t *testing.T) {
	w := NormalizeWirelessQuality(WirelessQuality{RCPI: true, Level: 220, Noise: 200})
	assert.Equal(t, int32(0), w.SignalDBm)   // 220/2-110 = 0
	assert.Equal(t, int32(-10), w.NoiseDBm) // 200/2-110 = -10
}

func TestNormalizeWirelessQualityDBM(t *testing.T) {
	w := NormalizeWirelessQuality(WirelessQuality{DBM: true, Level: 156, Noise: 200})
	assert.Equal(t, int32(-100), w.SignalDBm) // 156-256
	assert.Equal(t, int32(-56), w.NoiseDBm)   // 200-256
}

func TestNormalizeWirelessQualityRelative(t *testing.T) {
	w := NormalizeWirelessQuality(WirelessQuality{
		Level: 30, Noise: 10,
		MaxQualLevel: 60, MaxQualNoise: 100,
	})
	assert.Equal(t, int32(50), w.SignalDBm) // 100*30/60
	assert.Equal(t, int32(10), w.NoiseDBm)  // 100*10/100
}

func TestNormalizeWirelessQualityInvalidSkipsField(t *testing.T) {
	w := NormalizeWirelessQuality(WirelessQuality{DBM: true, LevelInvalid: true, Level: 10, Noise: 200})
	assert.Equal(t, int32(0), w.SignalDBm)
	assert.Equal(t, int32(-56), w.NoiseDBm)
}
