package sever

import (
	"testing"
	"time"
)

func TestKeySamples(t *testing.T) {
	field := KeySamples.Field(1024)
	if field.Key().Name() != "samples" {
		t.Errorf("expected key 'samples', got %q", field.Key().Name())
	}
}

func TestKeyElapsed(t *testing.T) {
	field := KeyElapsed.Field(3 * time.Millisecond)
	if field.Key().Name() != "elapsed" {
		t.Errorf("expected key 'elapsed', got %q", field.Key().Name())
	}
}

func TestKeyChecks(t *testing.T) {
	field := KeyChecks.Field(10)
	if field.Key().Name() != "checks" {
		t.Errorf("expected key 'checks', got %q", field.Key().Name())
	}
}

func TestKeyInterval(t *testing.T) {
	field := KeyInterval.Field(10 * time.Millisecond)
	if field.Key().Name() != "interval" {
		t.Errorf("expected key 'interval', got %q", field.Key().Name())
	}
}

func TestKeyRaised(t *testing.T) {
	field := KeyRaised.Field(5)
	if field.Key().Name() != "raised" {
		t.Errorf("expected key 'raised', got %q", field.Key().Name())
	}
}

func TestKeyPath(t *testing.T) {
	field := KeyPath.Field("/tmp/interrupt")
	if field.Key().Name() != "path" {
		t.Errorf("expected key 'path', got %q", field.Key().Name())
	}
}
