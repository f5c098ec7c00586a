package tracestore

import (
	"time"

	"github.com/thesyncim/lc3"
)

// Session groups the frames of one encode or decode run.
type Session struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Label        string    `gorm:"size:200" json:"label"`
	Direction    string    `gorm:"size:6" json:"direction"`
	DurationUS   int       `json:"duration_us"`
	SampleRateHz int       `json:"sample_rate_hz"`
	Channels     int       `json:"channels"`
	FrameBytes   int       `json:"frame_bytes"`
}

// TableName specifies the table name for GORM
func (Session) TableName() string {
	return "sessions"
}

// FrameRecord is one traced channel frame.
type FrameRecord struct {
	ID          uint   `gorm:"primarykey"`
	SessionID   uint   `gorm:"index"`
	Direction   string `gorm:"size:6"`
	Channel     int    `gorm:"index"`
	Seq         uint64
	Bytes       int
	Bandwidth   int
	BandwidthHz int
	Attack      bool
	Gain        int
	SNSShape    int
	TNSOrder0   int
	TNSOrder1   int
	NonZero     int
	NoiseLevel  int
	Residual    int
	TNSDropped  bool
	ZeroFrame   bool
	Bits        int
	Concealed   bool
	Lost        int
	Fade        float64
	Err         string `gorm:"size:200"`
}

// TableName specifies the table name for GORM
func (FrameRecord) TableName() string {
	return "frames"
}

func newFrameRecord(session uint, t lc3.FrameTrace) FrameRecord {
	r := FrameRecord{
		SessionID:   session,
		Direction:   t.Direction.String(),
		Channel:     t.Channel,
		Seq:         t.Frame,
		Bytes:       t.Bytes,
		Bandwidth:   t.Bandwidth,
		BandwidthHz: t.BandwidthHz,
		Attack:      t.Attack,
		Gain:        t.Gain,
		SNSShape:    t.SNSShape,
		TNSOrder0:   t.TNSOrders[0],
		TNSOrder1:   t.TNSOrders[1],
		NonZero:     t.NonZero,
		NoiseLevel:  t.NoiseLevel,
		Residual:    t.Residual,
		TNSDropped:  t.TNSDropped,
		ZeroFrame:   t.ZeroFrame,
		Bits:        t.Bits,
		Concealed:   t.Concealed,
		Lost:        t.Lost,
		Fade:        t.Fade,
	}
	if t.Err != nil {
		r.Err = t.Err.Error()
		if len(r.Err) > 200 {
			r.Err = r.Err[:200]
		}
	}
	return r
}

// Summary aggregates the frames of a session.
type Summary struct {
	Frames    int64
	Concealed int64
	Attacks   int64
	Errors    int64
	MeanGain  float64
	MeanBits  float64
}

// BandwidthCount is the number of frames coded at one bandwidth.
type BandwidthCount struct {
	BandwidthHz int
	Frames      int64
}
