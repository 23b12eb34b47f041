package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/taskwidget/internal/models"
)

// MaxRenderLogs is how many render logs are kept on disk.
const MaxRenderLogs = 50

const logSeparator = "---\n"

// WriteRenderLog records a failed render: a YAML header followed by the
// payload that failed. The log ID is derived from the time and render ID.
func WriteRenderLog(entry models.RenderLog, payload []byte) (*models.RenderLog, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, fmt.Errorf("failed to ensure logs dir: %w", err)
	}
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if entry.CreatedAt == "" {
		entry.CreatedAt = now.Format(time.RFC3339)
	}
	if entry.LogID == "" {
		entry.LogID = now.Format("2006-01-02T15-04-05")
		if entry.RenderID != "" {
			entry.LogID += "-" + shortID(entry.RenderID)
		}
	}

	header, err := yaml.Marshal(&entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(logSeparator)
	buf.Write(header)
	buf.WriteString(logSeparator)
	buf.Write(payload)

	path := filepath.Join(logsDir, entry.LogID+".log")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write log file: %w", err)
	}

	if err := PruneRenderLogs(MaxRenderLogs); err != nil {
		return &entry, err
	}
	return &entry, nil
}

// ListRenderLogs returns the metadata of all render logs, newest first.
func ListRenderLogs() ([]*models.RenderLog, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []*models.RenderLog
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(logsDir, e.Name()))
		if err != nil {
			continue
		}
		entry, _, err := parseRenderLog(data)
		if err != nil {
			continue
		}
		if entry.LogID == "" {
			entry.LogID = strings.TrimSuffix(e.Name(), ".log")
		}
		logs = append(logs, entry)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].CreatedAt != logs[j].CreatedAt {
			return logs[i].CreatedAt > logs[j].CreatedAt
		}
		return logs[i].LogID > logs[j].LogID
	})
	return logs, nil
}

// ReadRenderLog reads a render log and returns its metadata and payload.
func ReadRenderLog(logID string) (*models.RenderLog, []byte, error) {
	if logID == "" || strings.ContainsAny(logID, `/\`) {
		return nil, nil, fmt.Errorf("invalid log id %q", logID)
	}
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filepath.Join(logsDir, logID+".log"))
	if err != nil {
		return nil, nil, fmt.Errorf("log not found: %w", err)
	}
	return parseRenderLog(data)
}

// PruneRenderLogs deletes the oldest render logs beyond keep.
func PruneRenderLogs(keep int) error {
	logs, err := ListRenderLogs()
	if err != nil || len(logs) <= keep {
		return err
	}
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	for _, entry := range logs[keep:] {
		if err := os.Remove(filepath.Join(logsDir, entry.LogID+".log")); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func parseRenderLog(data []byte) (*models.RenderLog, []byte, error) {
	rest, ok := bytes.CutPrefix(data, []byte(logSeparator))
	if !ok {
		return nil, nil, fmt.Errorf("invalid log format")
	}
	header, body, ok := bytes.Cut(rest, []byte("\n"+logSeparator))
	if !ok {
		return nil, nil, fmt.Errorf("invalid log format")
	}
	var entry models.RenderLog
	if err := yaml.Unmarshal(header, &entry); err != nil {
		return nil, nil, fmt.Errorf("invalid log header: %w", err)
	}
	return &entry, body, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
