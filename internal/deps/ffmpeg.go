package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegVersion runs "<binary> -version" and returns the first output line,
// for example "ffmpeg version 7.1 Copyright ...".
func FFmpegVersion(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "-hide_banner", "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(&stdout)
	if scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", nil
}
