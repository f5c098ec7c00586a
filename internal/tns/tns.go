// Package tns implements temporal noise shaping: short lattice filters run
// across the spectrum, derived from lag-windowed LPC analysis and quantized
// as arcsine-spaced reflection coefficients.
package tns

import (
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/tables"
)

// MaxFilters is the maximum number of filters per frame.
const MaxFilters = 2

// MaxOrder is the highest filter order.
const MaxOrder = tables.TNSMaxLag

// Levels is the number of quantized reflection coefficient values. Index
// ZeroIndex codes a zero coefficient.
const (
	Levels    = 2*tables.TNSQuantSteps + 1
	ZeroIndex = tables.TNSQuantSteps
)

const (
	minPredGain     = 1.5
	weightPredGain  = 2.0
	maxWeightAtten  = 0.15
	lowRateBits10ms = 480
	sections        = 3
)

// Setup is the filter layout of a frame, fixed by the configuration and the
// detected bandwidth.
type Setup struct {
	NumFilters int
	MaxOrder   int
	Start      [MaxFilters]int
	Stop       [MaxFilters]int
}

// Configure returns the filter layout for a frame band-limited to bwHz.
func Configure(cfg frame.Config, bwHz int) Setup {
	var s Setup
	s.MaxOrder = MaxOrder
	if cfg.Duration == frame.Duration2500us {
		s.MaxOrder = 4
	}
	if cfg.Duration != frame.Duration2500us && bwHz >= 16000 {
		s.NumFilters = 2
		s.Start = [2]int{cfg.Bin(800), cfg.Bin(bwHz / 2)}
		s.Stop = [2]int{cfg.Bin(bwHz / 2), cfg.Bin(bwHz)}
	} else {
		s.NumFilters = 1
		s.Start[0] = cfg.Bin(600)
		s.Stop[0] = cfg.Bin(bwHz)
	}
	return s
}

// Filter is one quantized filter. Order 0 disables it.
type Filter struct {
	Order int
	Index [MaxOrder]int // reflection coefficient indices, < Levels
}

// Params holds the quantized filters of a frame.
type Params struct {
	Filters [MaxFilters]Filter
}

// Reset disables every filter.
func (p *Params) Reset() {
	for i := range p.Filters {
		p.Filters[i].Order = 0
		for k := range p.Filters[i].Index {
			p.Filters[i].Index[k] = ZeroIndex
		}
	}
}

// Active reports whether any filter is enabled.
func (p *Params) Active() bool {
	for _, f := range p.Filters {
		if f.Order > 0 {
			return true
		}
	}
	return false
}

// Reflection returns the dequantized reflection coefficient of index i.
func Reflection(i int) float64 {
	lv := tables.Levels()
	if i < ZeroIndex {
		return -lv[ZeroIndex-i]
	}
	return lv[i-ZeroIndex]
}

// quantize maps a reflection coefficient to its index.
func quantize(k float64) int {
	a := k
	if a < 0 {
		a = -a
	}
	q := 0
	for _, t := range tables.Thresholds() {
		if a > t {
			q++
		}
	}
	if k < 0 {
		return ZeroIndex - q
	}
	return ZeroIndex + q
}
