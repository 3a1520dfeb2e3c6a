package voice

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	"github.com/keshon/parrot/internal/playback"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// openStream spawns ffmpeg decoding the request to raw 48kHz stereo PCM.
// Speech audio is piped through stdin; sound clips are fetched by ffmpeg
// itself from their URL.
func openStream(req playback.Request) (io.ReadCloser, func(), error) {
	switch req.Kind {
	case playback.KindSpeech:
		return ffmpegPipe(req.Audio)
	case playback.KindSound:
		return ffmpegLink(req.SourceURL)
	default:
		return nil, nil, fmt.Errorf("unknown request kind %q", req.Kind)
	}
}

func ffmpegPipe(audio []byte) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(audio)
	return startFFmpeg(cmd)
}

func ffmpegLink(url string) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	return startFFmpeg(cmd)
}

func startFFmpeg(cmd *exec.Cmd) (io.ReadCloser, func(), error) {
	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		cmd.Process.Kill()
		cmd.Wait()
	}

	return reader, cleanup, nil
}
