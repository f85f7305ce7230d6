package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogWriterKeepsShellOutputClean(t *testing.T) {
	assert.Equal(t, os.Stderr, logWriter("cli"))
	assert.Equal(t, os.Stderr, logWriter("both"))
	assert.Equal(t, os.Stdout, logWriter("server"))
}
