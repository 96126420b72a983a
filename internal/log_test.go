package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestQuietRestoresLevel(t *testing.T) {
	l := NewLogger(LogLevelInfo)
	err := l.Quiet(func() error {
		assert.Equal(t, LogLevelError, l.GetLevel())
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, LogLevelInfo, l.GetLevel())
}

func TestQuietNested(t *testing.T) {
	l := NewLogger(LogLevelDebug)
	_ = l.Quiet(func() error {
		_ = l.Quiet(func() error { return nil })
		assert.Equal(t, LogLevelError, l.GetLevel(), "inner return must not restore the level")
		return nil
	})
	assert.Equal(t, LogLevelDebug, l.GetLevel())
}

func TestQuietInterleaved(t *testing.T) {
	// Scenario: A enters, B enters, A exits, B exits
	l := NewLogger(LogLevelInfo)
	aEntered, bEntered := make(chan struct{}), make(chan struct{})
	aDone, bRelease := make(chan struct{}), make(chan struct{})

	go func() {
		_ = l.Quiet(func() error {
			close(aEntered)
			<-bEntered
			return nil
		})
		close(aDone)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-aEntered
		_ = l.Quiet(func() error {
			close(bEntered)
			<-bRelease
			return nil
		})
	}()

	<-aDone
	assert.Equal(t, LogLevelError, l.GetLevel(), "level must stay lowered while B runs")
	close(bRelease)
	wg.Wait()
	assert.Equal(t, LogLevelInfo, l.GetLevel())
}

func TestQuietConcurrent(t *testing.T) {
	l := NewLogger(LogLevelInfo)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Quiet(func() error {
				l.Debug("hidden")
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, LogLevelInfo, l.GetLevel())
}

func TestSetLevelInsideQuiet(t *testing.T) {
	l := NewLogger(LogLevelInfo)
	_ = l.Quiet(func() error {
		l.SetLevel(LogLevelTrace)
		assert.Equal(t, LogLevelError, l.GetLevel())
		return nil
	})
	assert.Equal(t, LogLevelTrace, l.GetLevel())
}
