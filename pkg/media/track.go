package media

import (
	"errors"
	"io"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusPacket is large enough for any 20ms opus frame.
const maxOpusPacket = 1500

// NewTrack creates an opus audio track fed from the source. Encoding
// stops when the source is closed or an encode error occurs; the first
// error is reported through onErr (may be nil).
func NewTrack(source Source, onErr func(error)) (*webrtc.TrackLocalStaticSample, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  Channels,
		},
		"audio", "voicecafe-mic",
	)
	if err != nil {
		return nil, &MediaError{Reason: "create local track", Cause: err}
	}

	encoder, err := opus.NewEncoder(SampleRate, Channels, opus.AppVoIP)
	if err != nil {
		return nil, &MediaError{Reason: "create opus encoder", Cause: err}
	}

	go func() {
		buf := make([]byte, maxOpusPacket)
		for {
			frame, err := source.ReadFrame()
			if err != nil {
				if !errors.Is(err, io.EOF) && onErr != nil {
					onErr(err)
				}
				return
			}

			n, err := encoder.Encode(frame, buf)
			if err != nil {
				if onErr != nil {
					onErr(&MediaError{Reason: "opus encode", Cause: err})
				}
				return
			}

			sample := media.Sample{
				Data:     append([]byte(nil), buf[:n]...),
				Duration: FrameMS * time.Millisecond,
			}
			if err := track.WriteSample(sample); err != nil {
				// Track closed with the peer connection; stop quietly.
				return
			}
		}
	}()

	return track, nil
}
