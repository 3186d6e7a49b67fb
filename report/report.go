// Package report defines the compact wire format the firmware uses to
// stream timer-channel statistics over a serial link, and the decoder the
// host monitor uses to read them back.
//
// Frame layout:
//
//	[0]      total frame length
//	[1]      format version
//	[2]      channel record count
//	[3..]    records: channel id (1), fire count (4, BE), alarm ticks (4, BE)
//	[n-3]    CRC16 high byte  (over everything before the trailer)
//	[n-2]    CRC16 low byte
//	[n-1]    sync byte 0x7E
package report

import "errors"

const (
	FormatVersion = 1

	FrameSync        = 0x7E
	frameHeaderSize  = 3 // length, version, record count
	frameTrailerSize = 3 // crc16 + sync
	recordSize       = 9

	// MaxRecords matches the four physical timer channels.
	MaxRecords = 4

	frameLengthMin = frameHeaderSize + frameTrailerSize
	frameLengthMax = frameHeaderSize + MaxRecords*recordSize + frameTrailerSize
)

var (
	ErrFrameTooLong = errors.New("report: too many channel records")
	ErrBadFrame     = errors.New("report: malformed frame")
)

// ChannelStat is one channel's entry in a stats frame.
type ChannelStat struct {
	Channel    uint8
	Fires      uint32
	AlarmTicks uint32
}

// Encode builds a stats frame for the given channel records.
func Encode(stats []ChannelStat) ([]byte, error) {
	if len(stats) > MaxRecords {
		return nil, ErrFrameTooLong
	}

	total := frameHeaderSize + len(stats)*recordSize + frameTrailerSize
	frame := make([]byte, 0, total)
	frame = append(frame, byte(total), FormatVersion, byte(len(stats)))
	for _, s := range stats {
		frame = append(frame, s.Channel,
			byte(s.Fires>>24), byte(s.Fires>>16), byte(s.Fires>>8), byte(s.Fires),
			byte(s.AlarmTicks>>24), byte(s.AlarmTicks>>16), byte(s.AlarmTicks>>8), byte(s.AlarmTicks))
	}

	crc := CRC16(frame)
	frame = append(frame, byte(crc>>8), byte(crc), FrameSync)
	return frame, nil
}

// decodeFrame parses one complete frame (length already validated).
func decodeFrame(frame []byte) ([]ChannelStat, error) {
	body := frame[:len(frame)-frameTrailerSize]
	wantCRC := uint16(frame[len(frame)-3])<<8 | uint16(frame[len(frame)-2])
	if CRC16(body) != wantCRC {
		return nil, ErrBadFrame
	}
	if frame[1] != FormatVersion {
		return nil, ErrBadFrame
	}
	count := int(frame[2])
	if frameHeaderSize+count*recordSize+frameTrailerSize != len(frame) {
		return nil, ErrBadFrame
	}

	stats := make([]ChannelStat, 0, count)
	for i := 0; i < count; i++ {
		r := frame[frameHeaderSize+i*recordSize:]
		stats = append(stats, ChannelStat{
			Channel:    r[0],
			Fires:      uint32(r[1])<<24 | uint32(r[2])<<16 | uint32(r[3])<<8 | uint32(r[4]),
			AlarmTicks: uint32(r[5])<<24 | uint32(r[6])<<16 | uint32(r[7])<<8 | uint32(r[8]),
		})
	}
	return stats, nil
}

// Decoder extracts stats frames from a byte stream. Garbage between frames
// is skipped by scanning forward to the next plausible frame; corrupted
// frames are dropped and counted.
type Decoder struct {
	buf     []byte
	dropped int
}

// Feed appends stream bytes and returns all complete frames decoded so far.
func (d *Decoder) Feed(data []byte) [][]ChannelStat {
	d.buf = append(d.buf, data...)

	var out [][]ChannelStat
	for {
		stats, ok := d.next()
		if !ok {
			break
		}
		if stats != nil {
			out = append(out, stats)
		}
	}
	return out
}

// Dropped returns the number of frames discarded for framing or CRC errors.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// next tries to consume one frame from the buffer. Returns (nil, true) when
// a corrupt frame was skipped and scanning should continue.
func (d *Decoder) next() ([]ChannelStat, bool) {
	for len(d.buf) > 0 {
		msgLen := int(d.buf[0])
		if msgLen < frameLengthMin || msgLen > frameLengthMax {
			d.resync()
			continue
		}
		if len(d.buf) < msgLen {
			return nil, false // incomplete frame, wait for more bytes
		}
		if d.buf[msgLen-1] != FrameSync {
			d.resync()
			continue
		}

		frame := d.buf[:msgLen]
		stats, err := decodeFrame(frame)
		d.buf = d.buf[msgLen:]
		if err != nil {
			d.dropped++
			return nil, true
		}
		return stats, true
	}
	return nil, false
}

// resync skips past the next sync byte, dropping the garbage before it.
func (d *Decoder) resync() {
	d.dropped++
	for i, b := range d.buf {
		if b == FrameSync {
			d.buf = d.buf[i+1:]
			return
		}
	}
	d.buf = nil
}
