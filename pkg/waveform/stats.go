/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/


package waveform

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Points    int     `json:"points"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	PeakPeak  float64 `json:"peak_peak"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	RMS       float64 `json:"rms"`
	Crossings int     `json:"crossings"`
}

// ComputeStats summarizes the samples. Crossings counts how often the
// signal crosses its mean, which is twice the number of periods for a
// clean periodic signal.
func ComputeStats(w *Waveform) Stats {
	s := Stats{Points: len(w.Samples)}
	if s.Points == 0 {
		return s
	}
	x := make([]float64, len(w.Samples))
	for i, v := range w.Samples {
		x[i] = float64(v)
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.PeakPeak = s.Max - s.Min
	if s.Points > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	} else {
		s.Mean = x[0]
	}
	s.RMS = floats.Norm(x, 2) / math.Sqrt(float64(s.Points))

	above := x[0] > s.Mean
	for _, v := range x[1:] {
		if (v > s.Mean) != above {
			s.Crossings++
			above = !above
		}
	}
	return s
}
