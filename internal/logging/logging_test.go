package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New("warn", "text", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warn message missing:\n%s", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New("", "json", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	LogError(logger, "comparer", "load", logrus.Fields{"file": "a.csv"}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "boom" || entry["component"] != "comparer" || entry["file"] != "a.csv" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "text", &bytes.Buffer{}); err == nil {
		t.Error("New() with bad level: error = nil")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("New() with bad format: error = nil")
	}
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = Discard()
	var _ Logger = Discard().WithField("k", "v")
}
