package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Transcoder converts uploaded audio/video into the canonical storage
// formats: mp4 for video (plus a still-frame jpeg), mp3 for audio.
type Transcoder interface {
	TranscodeVideo(ctx context.Context, data []byte) (video []byte, frame []byte, err error)
	TranscodeAudio(ctx context.Context, data []byte) ([]byte, error)
}

// FFmpegTranscoder shells out to ffmpeg. Input and output go through temp
// files because mp4 muxing needs a seekable target.
type FFmpegTranscoder struct {
	Path string
}

func NewFFmpegTranscoder(path string) *FFmpegTranscoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegTranscoder{Path: path}
}

func (t *FFmpegTranscoder) TranscodeVideo(ctx context.Context, data []byte) ([]byte, []byte, error) {
	dir, err := os.MkdirTemp("", "transcode-video-")
	if err != nil {
		return nil, nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in")
	outVideo := filepath.Join(dir, "out.mp4")
	outFrame := filepath.Join(dir, "frame.jpg")

	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, nil, err
	}

	if err := t.run(ctx, "-i", in, "-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac", "-movflags", "+faststart", outVideo); err != nil {
		return nil, nil, fmt.Errorf("transcode video: %w", err)
	}
	if err := t.run(ctx, "-i", outVideo, "-frames:v", "1", "-q:v", "3", outFrame); err != nil {
		return nil, nil, fmt.Errorf("extract frame: %w", err)
	}

	video, err := os.ReadFile(outVideo)
	if err != nil {
		return nil, nil, err
	}
	frame, err := os.ReadFile(outFrame)
	if err != nil {
		return nil, nil, err
	}
	return video, frame, nil
}

func (t *FFmpegTranscoder) TranscodeAudio(ctx context.Context, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "transcode-audio-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out.mp3")

	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}
	if err := t.run(ctx, "-i", in, "-c:a", "libmp3lame", "-q:a", "4", out); err != nil {
		return nil, fmt.Errorf("transcode audio: %w", err)
	}
	return os.ReadFile(out)
}

func (t *FFmpegTranscoder) run(ctx context.Context, args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, t.Path, full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	return nil
}
