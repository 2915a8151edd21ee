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

package layers

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

/*
Waveform frame, little endian, one per trigger event:

	magic        uint16  0x5057
	nchan        uint16
	fsPerSample  int64   femtoseconds between samples
	nchan times:
	  index      uint16
	  depth      uint64
	  scale      float32 volts per count
	  offset     float32 volts
	  trigPhase  float32 femtoseconds
	  clipping   uint8
	  samples    depth * int16
*/

const (
	// WaveformLayerNum identifies the layer
	WaveformLayerNum = 2001
	// WaveformMagic is the first word of each frame
	WaveformMagic = 0x5057
	// FrameHeaderLen is magic + nchan + fsPerSample
	FrameHeaderLen = 12
	// ChannelHeaderLen is index + depth + scale + offset + trigPhase + clipping
	ChannelHeaderLen = 23
	// MaxFrameChannels bounds nchan so a garbled header can not stall the reader
	MaxFrameChannels = 64
	// MaxChannelDepth bounds the per channel sample count
	MaxChannelDepth = 1 << 30
)

type ChannelBlock struct {
	Index        uint16
	Scale        float32
	Offset       float32
	TriggerPhase float32
	Clipping     bool
	Samples      []int16
}

// Volts converts raw counts to volts
func (ch *ChannelBlock) Volts() []float32 {
	result := make([]float32, len(ch.Samples))
	for i, s := range ch.Samples {
		result[i] = float32(s)*ch.Scale + ch.Offset
	}
	return result
}

type WaveformLayer struct {
	layers.BaseLayer
	Magic       uint16
	FsPerSample int64
	Channels    []*ChannelBlock
}

var WaveformLayerType = gopacket.RegisterLayerType(WaveformLayerNum,
	gopacket.LayerTypeMetadata{Name: "WaveformLayerType", Decoder: gopacket.DecodeFunc(decodeWaveformLayer)})

// LayerType returns the type of the waveform layer in the layer catalog
func (wf *WaveformLayer) LayerType() gopacket.LayerType {
	return WaveformLayerType
}

// Len returns the serialized size of the frame in bytes
func (wf *WaveformLayer) Len() int {
	n := FrameHeaderLen
	for _, ch := range wf.Channels {
		n += ChannelHeaderLen + 2*len(ch.Samples)
	}
	return n
}

// SerializeTo serializes the frame into bytes and writes the bytes to the SerializeBuffer
func (wf *WaveformLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	buf, err := b.AppendBytes(wf.Len())
	if err != nil {
		return err
	}
	magic := wf.Magic
	if magic == 0 {
		magic = WaveformMagic
	}
	binary.LittleEndian.PutUint16(buf[0:2], magic)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(wf.Channels)))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(wf.FsPerSample))
	off := FrameHeaderLen
	for _, ch := range wf.Channels {
		binary.LittleEndian.PutUint16(buf[off:off+2], ch.Index)
		binary.LittleEndian.PutUint64(buf[off+2:off+10], uint64(len(ch.Samples)))
		binary.LittleEndian.PutUint32(buf[off+10:off+14], math.Float32bits(ch.Scale))
		binary.LittleEndian.PutUint32(buf[off+14:off+18], math.Float32bits(ch.Offset))
		binary.LittleEndian.PutUint32(buf[off+18:off+22], math.Float32bits(ch.TriggerPhase))
		buf[off+22] = 0
		if ch.Clipping {
			buf[off+22] = 1
		}
		off += ChannelHeaderLen
		for _, s := range ch.Samples {
			binary.LittleEndian.PutUint16(buf[off:off+2], uint16(s))
			off += 2
		}
	}
	return nil
}

func (wf *WaveformLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < FrameHeaderLen {
		df.SetTruncated()
		return ErrWaveformDecode{What: "frame too short"}
	}
	wf.Magic = binary.LittleEndian.Uint16(data[0:2])
	if wf.Magic != WaveformMagic {
		return ErrWaveformDecode{What: "wrong magic"}
	}
	nchan := int(binary.LittleEndian.Uint16(data[2:4]))
	if nchan > MaxFrameChannels {
		return ErrFrameLimit{What: "channel count", Value: uint64(nchan), Limit: MaxFrameChannels}
	}
	wf.FsPerSample = int64(binary.LittleEndian.Uint64(data[4:12]))
	if wf.FsPerSample <= 0 {
		return ErrWaveformDecode{What: "non positive sample period"}
	}

	wf.Channels = make([]*ChannelBlock, 0, nchan)
	off := FrameHeaderLen
	for i := 0; i < nchan; i++ {
		if len(data)-off < ChannelHeaderLen {
			df.SetTruncated()
			return ErrWaveformDecode{What: "channel header truncated"}
		}
		ch := &ChannelBlock{
			Index:        binary.LittleEndian.Uint16(data[off : off+2]),
			Scale:        math.Float32frombits(binary.LittleEndian.Uint32(data[off+10 : off+14])),
			Offset:       math.Float32frombits(binary.LittleEndian.Uint32(data[off+14 : off+18])),
			TriggerPhase: math.Float32frombits(binary.LittleEndian.Uint32(data[off+18 : off+22])),
			Clipping:     data[off+22] != 0,
		}
		depth := binary.LittleEndian.Uint64(data[off+2 : off+10])
		off += ChannelHeaderLen
		if depth > uint64(len(data)-off)/2 {
			df.SetTruncated()
			return ErrWaveformDecode{What: "channel samples truncated"}
		}
		ch.Samples = make([]int16, depth)
		for j := range ch.Samples {
			ch.Samples[j] = int16(binary.LittleEndian.Uint16(data[off : off+2]))
			off += 2
		}
		wf.Channels = append(wf.Channels, ch)
	}
	if off != len(data) {
		return ErrWaveformDecode{What: "trailing bytes after last channel"}
	}

	wf.BaseLayer = layers.BaseLayer{
		Contents: data,
		Payload:  []byte{},
	}
	return nil
}

func (wf *WaveformLayer) CanDecode() gopacket.LayerClass {
	return WaveformLayerType
}

func (wf *WaveformLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func decodeWaveformLayer(data []byte, p gopacket.PacketBuilder) error {
	wf := &WaveformLayer{}
	err := wf.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(wf)
	return nil
}

// DecodeWaveform decodes a complete frame
func DecodeWaveform(data []byte) (*WaveformLayer, error) {
	packet := gopacket.NewPacket(data, WaveformLayerType, gopacket.NoCopy)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	wf, ok := packet.Layer(WaveformLayerType).(*WaveformLayer)
	if !ok {
		return nil, ErrWaveformDecode{What: "no waveform layer"}
	}
	return wf, nil
}

// SerializeWaveform returns the wire bytes of a frame
func SerializeWaveform(wf *WaveformLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, wf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFrame reads exactly one frame from a byte stream using only the
// length fields. Content checks are left to DecodeWaveform so a damaged
// frame can be dropped without losing stream alignment.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, FrameHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	nchan := binary.LittleEndian.Uint16(header[2:4])
	if nchan > MaxFrameChannels {
		return nil, ErrFrameLimit{What: "channel count", Value: uint64(nchan), Limit: MaxFrameChannels}
	}
	frame := header
	for i := 0; i < int(nchan); i++ {
		chHeader := make([]byte, ChannelHeaderLen)
		if _, err := io.ReadFull(r, chHeader); err != nil {
			return nil, err
		}
		depth := binary.LittleEndian.Uint64(chHeader[2:10])
		if depth > MaxChannelDepth {
			return nil, ErrFrameLimit{What: "channel depth", Value: depth, Limit: MaxChannelDepth}
		}
		samples := make([]byte, 2*depth)
		if _, err := io.ReadFull(r, samples); err != nil {
			return nil, err
		}
		frame = append(frame, chHeader...)
		frame = append(frame, samples...)
	}
	return frame, nil
}
