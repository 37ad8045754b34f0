package store

import "time"

// RunRecord captures one supervised process run.
type RunRecord struct {
	Command     string    `json:"command"`
	Program     string    `json:"program"`
	Args        []string  `json:"args,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	ExitCode    int       `json:"exit_code"`
	LaunchError string    `json:"launch_error,omitempty"`
	Duration    string    `json:"duration"`
}

// DiscoveryRecord captures the result of a board discovery.
type DiscoveryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Result    string    `json:"result"`
	Boards    int       `json:"boards"`
	FQBN      string    `json:"fqbn,omitempty"`
	Port      string    `json:"port,omitempty"`
	Protocol  string    `json:"protocol,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SerialLog tracks a serial monitor session.
type SerialLog struct {
	Port      string    `json:"port"`
	BaudRate  int       `json:"baud_rate"`
	Timestamp time.Time `json:"timestamp"`
	Bytes     int64     `json:"bytes"`
	Duration  string    `json:"duration"`
}
