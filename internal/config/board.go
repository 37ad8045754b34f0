package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buckleypaul/catbot/internal/atomicfile"
)

// Keys of the board config file, one `key=value` assignment per line.
const (
	KeyFQBN     = "default_fqbn"
	KeyPort     = "default_port"
	KeyProtocol = "default_protocol"
)

// ErrNoBoard is returned by ReadBoard when no board config has been written.
var ErrNoBoard = errors.New("no board configured")

// BoardConfig is the board resolved by the last successful discovery.
type BoardConfig struct {
	FQBN     string
	Port     string
	Protocol string
}

// Validate requires all three fields.
func (b BoardConfig) Validate() error {
	var missing []string
	if b.FQBN == "" {
		missing = append(missing, KeyFQBN)
	}
	if b.Port == "" {
		missing = append(missing, KeyPort)
	}
	if b.Protocol == "" {
		missing = append(missing, KeyProtocol)
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete board config: missing %s", strings.Join(missing, ", "))
	}
	for _, v := range []string{b.FQBN, b.Port, b.Protocol} {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("board config value %q contains a line break", v)
		}
	}
	return nil
}

// Marshal renders the key-value file content.
func (b BoardConfig) Marshal() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s=%s\n", KeyFQBN, b.FQBN)
	fmt.Fprintf(&sb, "%s=%s\n", KeyPort, b.Port)
	fmt.Fprintf(&sb, "%s=%s\n", KeyProtocol, b.Protocol)
	return []byte(sb.String())
}

// BoardFile is the board config file at Path.
type BoardFile struct {
	Path string
}

// WriteBoard replaces the file with b. Incomplete configs are rejected
// before anything touches the disk.
func (f BoardFile) WriteBoard(b BoardConfig) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := atomicfile.Write(f.Path, b.Marshal(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// ReadBoard parses the file. Unknown keys, blank lines and `#` comments are
// ignored.
func (f BoardFile) ReadBoard() (BoardConfig, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return BoardConfig{}, fmt.Errorf("%w: %s does not exist", ErrNoBoard, f.Path)
		}
		return BoardConfig{}, err
	}
	defer file.Close()

	var b BoardConfig
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case KeyFQBN:
			b.FQBN = strings.TrimSpace(value)
		case KeyPort:
			b.Port = strings.TrimSpace(value)
		case KeyProtocol:
			b.Protocol = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return BoardConfig{}, err
	}
	if err := b.Validate(); err != nil {
		return BoardConfig{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return b, nil
}
