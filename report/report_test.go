package report

import (
	"bytes"
	"testing"
)

func sampleStats() []ChannelStat {
	return []ChannelStat{
		{Channel: 0, Fires: 123456, AlarmTicks: 1000},
		{Channel: 2, Fires: 42, AlarmTicks: 500000},
	}
}

func TestEncodeFrameShape(t *testing.T) {
	frame, err := Encode(sampleStats())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if int(frame[0]) != len(frame) {
		t.Errorf("length byte %d does not match frame size %d", frame[0], len(frame))
	}
	if frame[1] != FormatVersion {
		t.Errorf("expected version %d, got %d", FormatVersion, frame[1])
	}
	if frame[2] != 2 {
		t.Errorf("expected 2 records, got %d", frame[2])
	}
	if frame[len(frame)-1] != FrameSync {
		t.Errorf("frame must end with sync byte, got %#x", frame[len(frame)-1])
	}

	if _, err := Encode(make([]ChannelStat, MaxRecords+1)); err != ErrFrameTooLong {
		t.Errorf("expected ErrFrameTooLong, got %v", err)
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	frame, err := Encode(sampleStats())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var d Decoder
	frames := d.Feed(frame)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	got := frames[0]
	want := sampleStats()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if d.Dropped() != 0 {
		t.Errorf("expected no drops, got %d", d.Dropped())
	}
}

func TestDecoderPartialFeed(t *testing.T) {
	frame, _ := Encode(sampleStats())

	var d Decoder
	for _, b := range frame[:len(frame)-1] {
		if frames := d.Feed([]byte{b}); len(frames) != 0 {
			t.Fatal("frame decoded before final byte arrived")
		}
	}
	frames := d.Feed(frame[len(frame)-1:])
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame after final byte, got %d", len(frames))
	}
}

func TestDecoderSkipsGarbage(t *testing.T) {
	frame, _ := Encode(sampleStats())

	// Line noise before the frame, terminated by a stray sync byte
	stream := append([]byte{0x00, 0xFF, 0x13, FrameSync}, frame...)

	var d Decoder
	frames := d.Feed(stream)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame after garbage, got %d", len(frames))
	}
	if d.Dropped() == 0 {
		t.Error("garbage run should be counted as dropped")
	}
}

func TestDecoderRejectsCorruptCRC(t *testing.T) {
	good, _ := Encode(sampleStats())
	bad := bytes.Clone(good)
	bad[4] ^= 0x01 // flip a bit inside the first record

	var d Decoder
	stream := append(bad, good...)
	frames := d.Feed(stream)
	if len(frames) != 1 {
		t.Fatalf("expected only the good frame, got %d", len(frames))
	}
	if d.Dropped() != 1 {
		t.Errorf("expected 1 dropped frame, got %d", d.Dropped())
	}
}

func TestCRC16(t *testing.T) {
	if CRC16(nil) != 0xFFFF {
		t.Errorf("empty CRC should be 0xFFFF, got %#x", CRC16(nil))
	}
	a := CRC16([]byte{0x01, 0x02, 0x03})
	b := CRC16([]byte{0x01, 0x02, 0x04})
	if a == b {
		t.Errorf("CRC collision on differing input: %#x", a)
	}
	if a != CRC16([]byte{0x01, 0x02, 0x03}) {
		t.Error("CRC not deterministic")
	}
}
