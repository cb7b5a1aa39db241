// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collect

// WirelessQuality is whichever representation a wireless driver reports
// signal/noise in; exactly one branch applies per RFC of the Linux
// wireless extensions (see linux.go's ioctl call site).
type WirelessQuality struct {
	RCPI            bool
	DBM             bool
	Level, Noise    int
	LevelInvalid    bool
	NoiseInvalid    bool
	MaxQualLevel    int
	MaxQualNoise    int
}

// NormalizeWirelessQuality converts a raw iw_statistics-shaped reading,
// picking among RCPI, absolute-dBm, and relative-quality normalization
// depending on what the driver populated. RCPI and absolute-dBm readings
// become dBm; a relative-quality reading becomes a percentage of
// MaxQualLevel/MaxQualNoise and is not converted to dBm. Kept as a pure
// function, independent of the ioctl call site, so it is testable
// without a wireless adapter.
func NormalizeWirelessQuality(q WirelessQuality) Wireless {
	var signal, noise int

	switch {
	case q.RCPI:
		if !q.LevelInvalid {
			signal = (q.Level / 2) - 110
		}
		if !q.NoiseInvalid {
			noise = (q.Noise / 2) - 110
		}
	case q.DBM:
		if !q.LevelInvalid {
			signal = q.Level - 256
		}
		if !q.NoiseInvalid {
			noise = q.Noise - 256
		}
	default:
		if !q.LevelInvalid && q.MaxQualLevel != 0 {
			signal = (100 * q.Level) / q.MaxQualLevel
		}
		if !q.NoiseInvalid && q.MaxQualNoise != 0 {
			noise = (100 * q.Noise) / q.MaxQualNoise
		}
	}

	return Wireless{SignalDBm: int32(signal), NoiseDBm: int32(noise)}
}
