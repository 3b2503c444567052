package main

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGinModeDefaultsToRelease(t *testing.T) {
	if got := ginMode(""); got != gin.ReleaseMode {
		t.Fatalf("ginMode(\"\") = %q, want %q", got, gin.ReleaseMode)
	}
	if got := ginMode(gin.DebugMode); got != gin.DebugMode {
		t.Fatalf("explicit GIN_MODE should win, got %q", got)
	}
}
